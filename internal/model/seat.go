package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Seat describes a bookable seat belonging to a single showtime. Seats are
// uniquely identified by (showtime_id, label); the row letter and column
// number are derived from the label at creation time.
//
// Fields:
//
//	ID         – primary key identifier.
//	ShowtimeID – showtime this seat belongs to.
//	Label      – seat label such as "A1"; unique within the showtime.
//	RowLabel   – leading letter of the label.
//	ColNumber  – numeric part of the label.
//	Booked     – whether a live claim exists for this seat. Derived from
//	             seat_claims when loading, never stored on the row itself.
type Seat struct {
	ID         uint64    // seats.id
	ShowtimeID uint64    // seats.showtime_id
	Label      string    // seats.label
	RowLabel   string    // seats.row_label
	ColNumber  uint32    // seats.col_number
	Booked     bool      // derived from seat_claims
	CreatedAt  time.Time // seats.created_at
}

// SeatRef identifies a seat by showtime and label. Two refs are equal only
// when both fields match, so the same label in different showtimes never
// collides. The zero value is not a valid reference.
type SeatRef struct {
	ShowtimeID uint64
	Label      string
}

// ErrBadSeatLabel is returned by ParseSeatLabel for labels that do not
// follow the row-letter + column-number form.
var ErrBadSeatLabel = errors.New("seat label must be a row letter followed by a column number")

// ParseSeatLabel splits a label like "A12" into its row letter and column
// number. Labels are upper-cased before parsing so "a1" and "A1" name the
// same seat. The column must be a positive integer.
func ParseSeatLabel(label string) (row string, col uint32, err error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if len(label) < 2 {
		return "", 0, ErrBadSeatLabel
	}
	row = label[:1]
	if row[0] < 'A' || row[0] > 'Z' {
		return "", 0, ErrBadSeatLabel
	}
	n, convErr := strconv.ParseUint(label[1:], 10, 32)
	if convErr != nil || n == 0 {
		return "", 0, ErrBadSeatLabel
	}
	return row, uint32(n), nil
}

// NormalizeSeatLabels upper-cases, trims and de-duplicates labels while
// preserving first-seen order. Empty entries are dropped.
func NormalizeSeatLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
