package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReport(t *testing.T) {
	r := BuildReport(3, 8, 1000)
	assert.Equal(t, int64(3), r.TotalReservations)
	assert.Equal(t, int64(8), r.TicketsSold)
	assert.Equal(t, uint64(8000), r.RevenueCents)
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(0, 0, 1000)
	assert.Zero(t, r.TotalReservations)
	assert.Zero(t, r.TicketsSold)
	assert.Zero(t, r.RevenueCents)
}
