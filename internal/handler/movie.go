package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinereserve/booking-api/internal/model"
	"github.com/cinereserve/booking-api/internal/repository"
)

// MovieHandler implements catalog CRUD and search for movies. Mutating
// endpoints are registered behind the admin role middleware.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	if movies == nil {
		panic("nil repository passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies}
}

type movieReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	ReleaseDate *string `json:"release_date"` // YYYY-MM-DD
}

// validate checks field limits; required controls whether absent fields are
// an error (create) or skipped (partial update).
func (r movieReq) validate(required bool) (string, bool) {
	if r.Title == nil || r.Description == nil || r.Genre == nil || r.ReleaseDate == nil {
		if required {
			return "missing required fields", false
		}
	}
	if r.Title != nil && (*r.Title == "" || len(*r.Title) > 200) {
		return "title is required and must be <= 200 characters", false
	}
	if r.Description != nil && len(*r.Description) > 1000 {
		return "description must be <= 1000 characters", false
	}
	if r.Genre != nil && (*r.Genre == "" || len(*r.Genre) > 50) {
		return "genre is required and must be <= 50 characters", false
	}
	if r.ReleaseDate != nil {
		if _, err := time.Parse("2006-01-02", *r.ReleaseDate); err != nil {
			return "invalid release date format, use YYYY-MM-DD", false
		}
	}
	return "", true
}

type movieResp struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Genre       string  `json:"genre"`
	PosterURL   *string `json:"poster_url"`
	ReleaseDate string  `json:"release_date"`
}

func toMovieResp(m model.Movie) movieResp {
	return movieResp{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Genre:       m.Genre,
		PosterURL:   m.PosterURL,
		ReleaseDate: m.ReleaseDate.Format("2006-01-02"),
	}
}

// Create handles POST /v1/movies (admin).
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(true); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	release, _ := time.Parse("2006-01-02", *req.ReleaseDate)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.Movie{Title: *req.Title, Description: *req.Description, Genre: *req.Genre, ReleaseDate: release}
	if err := h.Movies.Create(ctx, &m); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toMovieResp(m))
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toMovieResp(m))
}

// Update handles PUT /v1/movies/:id (admin); absent fields keep their
// stored value.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(false); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	upd := repository.MovieUpdate{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		ReleaseDate: req.ReleaseDate,
	}
	if err := h.Movies.Update(ctx, id, upd); err != nil {
		return fail(c, err)
	}
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toMovieResp(m))
}

// Delete handles DELETE /v1/movies/:id (admin). Movies with active
// reservations on any showtime cannot be removed.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted"})
}

// List handles GET /v1/movies with page/per_page pagination.
func (h *MovieHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, total, err := h.Movies.List(ctx, page, perPage)
	if err != nil {
		return fail(c, err)
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	totalPages := (total + int64(perPage) - 1) / int64(perPage)
	return c.JSON(http.StatusOK, echo.Map{
		"movies":       out,
		"total_pages":  totalPages,
		"current_page": page,
	})
}

// Search handles GET /v1/movies/search?title=&genre= with case-insensitive
// substring matching.
func (h *MovieHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.Search(ctx, c.QueryParam("title"), c.QueryParam("genre"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, out)
}
