package database

import (
	"context"
	"database/sql"
)

// Migrate applies the schema idempotently. Every statement uses
// CREATE TABLE IF NOT EXISTS so a restart against an existing database is a
// no-op. The UNIQUE keys here carry the booking invariants: a seat label can
// exist once per showtime, and a seat can appear in at most one live claim.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(80)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(200)  NOT NULL,
		description  TEXT          NOT NULL,
		genre        VARCHAR(50)   NOT NULL,
		poster_url   VARCHAR(500)  NULL,
		release_date DATE          NOT NULL,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS showtimes (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id     BIGINT UNSIGNED NOT NULL,
		start_time   DATETIME NOT NULL,
		duration_min INT UNSIGNED NOT NULL DEFAULT 120,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_showtimes_start (start_time),
		CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		showtime_id BIGINT UNSIGNED NOT NULL,
		label       VARCHAR(10) NOT NULL,
		row_label   CHAR(1)     NOT NULL,
		col_number  INT UNSIGNED NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_seats_showtime_label (showtime_id, label),
		CONSTRAINT fk_seats_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id           BIGINT UNSIGNED NOT NULL,
		showtime_id       BIGINT UNSIGNED NOT NULL,
		status            ENUM('active','cancelled') NOT NULL DEFAULT 'active',
		total_price_cents INT UNSIGNED NOT NULL,
		created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_showtime (showtime_id),
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_reservations_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id)
	) ENGINE=InnoDB`,

	// A row in seat_claims exists only while the owning reservation is
	// active; cancellation deletes the rows in the same transaction. The
	// unique key on seat_id is what makes concurrent overlapping bookings
	// impossible across service instances.
	`CREATE TABLE IF NOT EXISTS seat_claims (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		reservation_id BIGINT UNSIGNED NOT NULL,
		showtime_id    BIGINT UNSIGNED NOT NULL,
		seat_id        BIGINT UNSIGNED NOT NULL,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_seat_claims_seat (seat_id),
		KEY idx_seat_claims_reservation (reservation_id),
		CONSTRAINT fk_seat_claims_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id),
		CONSTRAINT fk_seat_claims_seat FOREIGN KEY (seat_id) REFERENCES seats(id)
	) ENGINE=InnoDB`,
}
