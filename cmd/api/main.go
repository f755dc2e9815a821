package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dabachat_backend/internal/agent"
	"dabachat_backend/internal/availability"
	"dabachat_backend/internal/blanes"
	"dabachat_backend/internal/booking"
	"dabachat_backend/internal/catalog"
	"dabachat_backend/internal/chat"
	apphttp "dabachat_backend/internal/http"
	"dabachat_backend/internal/http/router"
	"dabachat_backend/internal/notification"
	"dabachat_backend/internal/webhook"
	"dabachat_backend/migrations"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/db"
	"dabachat_backend/platform/events"
	"dabachat_backend/platform/logger"
	"dabachat_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Booking Platform Gateway
	// ========================================================================

	tokens := blanes.NewTokenSource(cfg, log)
	gateway := blanes.NewClient(cfg, tokens, log)

	districts, err := catalog.LoadDistricts()
	if err != nil {
		log.Error("failed to load district reference data", "error", err)
		panic("failed to load district reference data: " + err.Error())
	}

	catalogSvc := catalog.NewService(gateway, districts, log)
	availabilitySvc := availability.NewService(gateway, log)
	bookingSvc := booking.NewService(gateway, eventBus, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// The assistant needs the chat service for email binding and the chat
	// module needs the assistant for replies. The tool dependencies struct
	// is filled in two steps to break the cycle.
	deps := &agent.ToolDependencies{
		Catalog:      catalogSvc,
		Availability: availabilitySvc,
		Booking:      bookingSvc,
		Logger:       log,
	}
	assistant, err := agent.New(cfg, deps, log)
	if err != nil {
		log.Error("failed to initialize booking assistant", "error", err)
		panic("failed to initialize booking assistant: " + err.Error())
	}

	chatModule := chat.NewModule(pool, assistant, eventBus, val, log)
	deps.Sessions = chatModule.Service()

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationSvc := notification.NewService(cfg, log)
	notificationSvc.Register(eventBus)

	modules := []apphttp.Module{chatModule}
	if cfg.IsWhatsAppEnabled() {
		modules = append(modules, webhook.NewModule(cfg, cfg, chatModule.Service(), eventBus, log))
		log.Info("whatsapp webhook enabled")
	} else {
		log.Warn("whatsapp disabled; set META_ACCESS_TOKEN and META_PHONE_NUMBER_ID to enable")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
