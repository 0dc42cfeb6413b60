package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatConflictErrorMessage(t *testing.T) {
	err := &SeatConflictError{Labels: []string{"A1", "B2"}}
	assert.Equal(t, "seats already booked: A1, B2", err.Error())
}

func TestSeatConflictErrorAs(t *testing.T) {
	var target *SeatConflictError
	wrapped := fmt.Errorf("booking failed: %w", &SeatConflictError{Labels: []string{"C3"}})
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, []string{"C3"}, target.Labels)
}

func TestSeatsNotFoundErrorAs(t *testing.T) {
	var target *SeatsNotFoundError
	wrapped := fmt.Errorf("booking failed: %w", &SeatsNotFoundError{Labels: []string{"Z9"}})
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "unknown seats: Z9", target.Error())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'A1' for key 'uq_seat_claims_seat'")))
	assert.False(t, isDuplicateKey(errors.New("Error 1213 (40001): Deadlock found")))
	assert.False(t, isDuplicateKey(nil))
}
