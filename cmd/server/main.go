package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alphapocket/pocket-backend/internal/api"
	"github.com/alphapocket/pocket-backend/internal/config"
	"github.com/alphapocket/pocket-backend/internal/database"
	"github.com/alphapocket/pocket-backend/internal/events"
	"github.com/alphapocket/pocket-backend/internal/quote"
	"github.com/alphapocket/pocket-backend/internal/repository"
	"github.com/alphapocket/pocket-backend/internal/service"
	"github.com/alphapocket/pocket-backend/internal/session"
	"github.com/alphapocket/pocket-backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	version, err := database.Migrate(context.Background(), db)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Printf("Database schema at version %d", version)

	// Quote source
	fetcher := quote.NewFetcher(yahoo.NewFinanceClient(cfg.Quote.BaseURL), quote.Options{
		Timeout:       cfg.Quote.Timeout,
		CacheTTL:      cfg.Quote.CacheTTL,
		NumericSuffix: cfg.Quote.NumericSuffix,
	})

	// Optional event stream
	var publisher service.EventPublisher
	if cfg.Events.Enabled() {
		producer := events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Printf("Failed to close event producer: %v", err)
			}
		}()
		publisher = producer
		log.Printf("Publishing watchlist events to %s on %v", cfg.Events.Topic, cfg.Events.Brokers)
	}

	// Create repositories
	positionRepo := repository.NewPositionRepository(db)

	// Create services
	sessions := session.NewManager(cfg.Session.Key, cfg.Session.IdleTTL, nil)
	sessions.SetLimit(cfg.Session.MaxSessions)
	systemService := service.NewSystemService(db, map[string]bool{
		"watchlist_events": cfg.Events.Enabled(),
	})
	portfolioService := service.NewPortfolioService(positionRepo, fetcher, cfg.Quote.Lookback)
	watchlistService := service.NewWatchlistService(fetcher, publisher)

	// Housekeeping
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Session.SweepSchedule, func() {
		sweep(sessions, fetcher.Cache())
	}); err != nil {
		log.Fatalf("Invalid SWEEP_SCHEDULE %q: %v", cfg.Session.SweepSchedule, err)
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Portfolio: portfolioService,
		Watchlist: watchlistService,
		Sessions:  sessions,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// sweep drops idle sessions and expired quote batches.
func sweep(sessions *session.Manager, cache *quote.Cache) {
	expired := sessions.Sweep()
	purged := cache.PurgeExpired()
	if expired > 0 || purged > 0 {
		log.Printf("Housekeeping: removed %d idle sessions and %d cached batches", expired, purged)
	}
}
