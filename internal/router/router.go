// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinereserve/booking-api/internal/config"
	"github.com/cinereserve/booking-api/internal/handler"
	"github.com/cinereserve/booking-api/internal/middleware"
	"github.com/cinereserve/booking-api/internal/model"
)

// Handlers groups every handler the route table needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Movies       *handler.MovieHandler
	Showtimes    *handler.ShowtimeHandler
	Seats        *handler.SeatHandler
	Reservations *handler.ReservationHandler
	Admin        *handler.AdminHandler
	Posters      *handler.PosterHandler
}

// RegisterRoutes registers liveness endpoints that carry no auth.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints under /v1/auth plus the
// authenticated /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints. Catalog
// routes sit behind the response cache and the rate limiter; the seat map
// is rate limited but never cached so availability is always fresh.
func RegisterPublic(e *echo.Echo, h Handlers, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	browse := e.Group("/v1", limiter, cache)
	browse.GET("/movies", h.Movies.List)
	browse.GET("/movies/:id", h.Movies.Get)
	browse.GET("/movies/search", h.Movies.Search)
	browse.GET("/showtimes/search", h.Showtimes.Search)

	e.GET("/v1/showtimes/:id/seats", h.Seats.List, limiter)
}

// RegisterReservations registers the booking endpoints; all of them require
// a valid access token.
func RegisterReservations(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", h.Reservations.Create)
	g.GET("", h.Reservations.ListMine)
	g.DELETE("/:id", h.Reservations.Cancel)
}

// RegisterAdmin registers catalog management and reporting; every route
// requires the admin role.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/movies", h.Movies.Create)
	g.PUT("/movies/:id", h.Movies.Update)
	g.DELETE("/movies/:id", h.Movies.Delete)
	g.POST("/movies/:id/poster", h.Posters.Upload)

	g.POST("/showtimes", h.Showtimes.Create)
	g.DELETE("/showtimes/:id", h.Showtimes.Delete)
	g.POST("/showtimes/:id/seats", h.Seats.CreateBulk)

	g.POST("/users/:id/promote", h.Auth.Promote)

	g.GET("/admin/report", h.Admin.Report)
	g.GET("/admin/reservations", h.Admin.ListReservations)
}

// RegisterStatic serves uploaded poster images from disk.
func RegisterStatic(e *echo.Echo, posterDir string) {
	e.Static("/static/posters", posterDir)
}
