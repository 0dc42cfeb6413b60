package queue

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/cinereserve/booking-api/internal/notify"
)

// StartConfirmationConsumer connects to RabbitMQ, declares the
// reservation.confirmed queue (durable), and consumes events, sending one
// confirmation email per reservation. It runs a reconnect loop with capped
// backoff and keeps running across broker restarts; a message that cannot
// be decoded is rejected without requeue so a poison payload cannot wedge
// the queue.
func StartConfirmationConsumer(log zerolog.Logger, sender notify.Sender) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("confirmation-consumer: dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log, sender); err != nil {
			log.Warn().Err(err).Msg("confirmation-consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log zerolog.Logger, sender notify.Sender) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("confirmation-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(confirmedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(confirmedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev ReservationConfirmedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Warn().Err(err).Msg("confirmation-consumer: bad payload")
			_ = d.Reject(false)
			continue
		}
		subject, body := notify.ConfirmationBody(ev.Username, ev.MovieTitle, ev.StartTime, ev.SeatLabels, ev.TotalPriceCents)
		// Send failures are acked too: notification is best-effort and the
		// sender already logged the error.
		_ = sender.Send(ev.Email, subject, body)
		_ = d.Ack(false)
		log.Info().Uint64("reservation_id", ev.ReservationID).Msg("confirmation processed")
	}
	return fmt.Errorf("delivery channel closed")
}
