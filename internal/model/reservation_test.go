package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalPriceCents(t *testing.T) {
	assert.Equal(t, uint32(0), TotalPriceCents(0, 1000))
	assert.Equal(t, uint32(1000), TotalPriceCents(1, 1000))
	assert.Equal(t, uint32(3500), TotalPriceCents(7, 500))
}

func TestShowtimeEndTime(t *testing.T) {
	start := time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)
	s := Showtime{StartTime: start, DurationMin: 135}
	assert.Equal(t, start.Add(135*time.Minute), s.EndTime())
}
