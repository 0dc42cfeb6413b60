package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatLabel(t *testing.T) {
	tests := []struct {
		label string
		row   string
		col   uint32
	}{
		{"A1", "A", 1},
		{"a1", "A", 1},
		{" B12 ", "B", 12},
		{"Z999", "Z", 999},
	}
	for _, tc := range tests {
		row, col, err := ParseSeatLabel(tc.label)
		require.NoError(t, err, "label %q", tc.label)
		assert.Equal(t, tc.row, row)
		assert.Equal(t, tc.col, col)
	}
}

func TestParseSeatLabelRejectsMalformed(t *testing.T) {
	for _, label := range []string{"", "A", "1", "12", "AA1", "A0", "A-1", "Ax", "!1"} {
		_, _, err := ParseSeatLabel(label)
		assert.ErrorIs(t, err, ErrBadSeatLabel, "label %q", label)
	}
}

func TestNormalizeSeatLabels(t *testing.T) {
	got := NormalizeSeatLabels([]string{" a1", "A1", "b2", "", "  ", "B2", "c3"})
	assert.Equal(t, []string{"A1", "B2", "C3"}, got)
}

func TestNormalizeSeatLabelsEmpty(t *testing.T) {
	assert.Empty(t, NormalizeSeatLabels(nil))
	assert.Empty(t, NormalizeSeatLabels([]string{"", "   "}))
}

func TestSeatRefEquality(t *testing.T) {
	a := SeatRef{ShowtimeID: 1, Label: "A1"}
	b := SeatRef{ShowtimeID: 1, Label: "A1"}
	c := SeatRef{ShowtimeID: 2, Label: "A1"}
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
