package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alphapocket/pocket-backend/internal/api/handlers"
	custommiddleware "github.com/alphapocket/pocket-backend/internal/api/middleware"
	"github.com/alphapocket/pocket-backend/internal/config"
	"github.com/alphapocket/pocket-backend/internal/service"
	"github.com/alphapocket/pocket-backend/internal/session"
)

// Services groups the dependencies the router hands to its handlers.
type Services struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Watchlist *service.WatchlistService
	Sessions  *session.Manager
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	watchlistHandler := handlers.NewWatchlistHandler(svc.Watchlist)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, cfg.Display.BaseCurrency)
			r.Get("/positions", portfolioHandler.Positions)
			r.Get("/snapshot", portfolioHandler.Snapshot)
			r.Get("/history", portfolioHandler.History)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Use(custommiddleware.Session(svc.Sessions))
			r.Get("/", watchlistHandler.Categories)
			r.Post("/category", watchlistHandler.CreateCategory)
			r.Post("/symbol", watchlistHandler.AddSymbol)
			r.Get("/quotes", watchlistHandler.Quotes)
		})

		r.Route("/quote", func(r chi.Router) {
			r.Get("/search", watchlistHandler.Search)
		})
	})

	return r
}
