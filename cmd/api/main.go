package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/doorlab/roomkey-bookings/internal/access"
	"github.com/doorlab/roomkey-bookings/internal/availability"
	"github.com/doorlab/roomkey-bookings/internal/clock"
	"github.com/doorlab/roomkey-bookings/internal/http/handlers"
	httpmw "github.com/doorlab/roomkey-bookings/internal/http/middleware"
	"github.com/doorlab/roomkey-bookings/internal/repo/postgres"
	"github.com/doorlab/roomkey-bookings/internal/service"
	"github.com/doorlab/roomkey-bookings/pkg/cache"
	"github.com/doorlab/roomkey-bookings/pkg/config"
	"github.com/doorlab/roomkey-bookings/pkg/database"
	"github.com/doorlab/roomkey-bookings/pkg/events"
	"github.com/doorlab/roomkey-bookings/pkg/logger"
	mw "github.com/doorlab/roomkey-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	wallClock, err := clock.NewWallClock(cfg.Booking.Timezone)
	if err != nil {
		logger.Error("Invalid timezone", "error", err, "timezone", cfg.Booking.Timezone)
		os.Exit(1)
	}

	// Redis is optional; without it booking creation simply loses
	// Idempotency-Key replay protection.
	var idempotencyStore mw.IdempotencyStore
	if redisClient, err := cache.Connect(ctx, cfg.Redis.URL); err != nil {
		logger.Warn("Redis unavailable, idempotency disabled", "error", err)
	} else {
		defer redisClient.Close()
		idempotencyStore = cache.NewIdempotencyStore(redisClient)
	}

	// Repositories
	bookingRepo := postgres.NewBookingRepo(pool)
	roomRepo := postgres.NewRoomRepo(pool)
	userRepo := postgres.NewUserRepo(pool)

	// Core components
	engine := availability.NewEngine(bookingRepo, cfg.Booking.DayStartHour, cfg.Booking.DayEndHour)
	indicators := access.NewIndicatorRegistry()
	gate := access.NewGate(bookingRepo, roomRepo, wallClock, eventBus)

	// Services
	bookingService := service.NewBookingService(bookingRepo, eventBus)
	authService := service.NewAuthService(userRepo, cfg.Auth)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	roomsHandler := handlers.NewRoomsHandler(roomRepo, engine)
	bookingsHandler := handlers.NewBookingsHandler(bookingService)
	deviceHandler := handlers.NewDeviceHandler(gate, indicators)
	adminHandler := handlers.NewAdminHandler(bookingRepo, pool)

	loginLimiter := httpmw.NewRateLimiter(pool, httpmw.RateLimitConfig{
		Requests: cfg.RateLimit.LoginRequests,
		Window:   cfg.RateLimit.Window,
	})
	unlockLimiter := httpmw.NewRateLimiter(pool, httpmw.RateLimitConfig{
		Requests: cfg.RateLimit.UnlockRequests,
		Window:   cfg.RateLimit.Window,
	})

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health(pool.Ping))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.With(loginLimiter.Middleware()).Post("/login", authHandler.Login)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", roomsHandler.List)
			r.Get("/{roomID}/availability/{date}", roomsHandler.Availability)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingsHandler.ListAll)
			r.Group(func(r chi.Router) {
				r.Use(httpmw.RequireAuth(cfg.Auth.JWTSecret))
				if idempotencyStore != nil {
					r.Use(mw.Idempotency(idempotencyStore))
				}
				r.Post("/", bookingsHandler.Create)
				r.Delete("/{id}", bookingsHandler.Cancel)
			})
		})

		r.Route("/device", func(r chi.Router) {
			r.Get("/status/{roomID}", deviceHandler.Status)
			r.With(unlockLimiter.Middleware()).Post("/unlock/{roomID}", deviceHandler.Unlock)
			r.Post("/checkin/{roomID}", deviceHandler.CheckIn)
			r.Post("/checkout/{roomID}", deviceHandler.CheckOut)
			r.Get("/indicator/{roomID}", deviceHandler.GetIndicator)
			r.Post("/indicator/{roomID}", deviceHandler.SetIndicator)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Delete("/bookings", adminHandler.ClearBookings)
			r.Post("/reset", adminHandler.Reset)
		})
	})

	// Audit log: every booking and room event ends up in the structured
	// log, the operator's record of unlocks and occupancy changes.
	for _, subject := range []string{"booking.*", "room.*"} {
		if err := eventBus.QueueSubscribe(subject, "audit-log", func(msg *events.Message) {
			logger.Info("Event", "subject", msg.Subject, "payload", string(msg.Data))
		}); err != nil {
			logger.Error("Failed to subscribe audit log", "error", err, "subject", subject)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting roomkey API", "port", cfg.Server.Port, "timezone", cfg.Booking.Timezone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if deleted, err := loginLimiter.CleanupExpired(gctx); err != nil {
					logger.Warn("Rate limit cleanup failed", "error", err)
				} else if deleted > 0 {
					logger.Debug("Cleaned up rate limit rows", "deleted", deleted)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
