package model

import "time"

// Movie mirrors the `movies` table. PosterURL is nil until an admin uploads
// a poster for the movie.
type Movie struct {
	ID          uint64
	Title       string
	Description string
	Genre       string
	PosterURL   *string
	ReleaseDate time.Time // date only; time component is zero
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Showtime mirrors the `showtimes` table. A showtime belongs to exactly one
// movie and owns its seats.
type Showtime struct {
	ID          uint64
	MovieID     uint64
	StartTime   time.Time
	DurationMin uint32
	CreatedAt   time.Time
}

// EndTime returns the moment the screening finishes.
func (s Showtime) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMin) * time.Minute)
}
