package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cinereserve/booking-api/internal/repository"
	"github.com/cinereserve/booking-api/internal/storage"
)

// PosterHandler accepts poster image uploads for movies.
type PosterHandler struct {
	Movies *repository.MovieRepo
	Store  storage.PosterStore
	Log    zerolog.Logger
}

func NewPosterHandler(movies *repository.MovieRepo, store storage.PosterStore, log zerolog.Logger) *PosterHandler {
	if movies == nil || store == nil {
		panic("nil dependency passed to NewPosterHandler")
	}
	return &PosterHandler{Movies: movies, Store: store, Log: log}
}

// Upload handles POST /v1/movies/:id/poster (admin). Expects a multipart
// form with a "poster" file field; the stored URL replaces any previous
// poster on the movie.
func (h *PosterHandler) Upload(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	fh, err := c.FormFile("poster")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "poster file is required"})
	}
	if !storage.AllowedExtension(fh.Filename) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": storage.ErrBadExtension.Error()})
	}
	if fh.Size > storage.MaxPosterBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": storage.ErrTooLarge.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Movies.GetByID(ctx, movieID); err != nil {
		return fail(c, err)
	}

	src, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer src.Close()

	url, err := h.Store.Save(ctx, fh.Filename, src)
	if err != nil {
		switch err {
		case storage.ErrBadExtension, storage.ErrTooLarge:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return fail(c, err)
	}
	if err := h.Movies.SetPosterURL(ctx, movieID, url); err != nil {
		return fail(c, err)
	}

	h.Log.Info().Uint64("movie_id", movieID).Str("poster_url", url).Msg("poster uploaded")
	return c.JSON(http.StatusOK, echo.Map{"movie_id": movieID, "poster_url": url})
}
