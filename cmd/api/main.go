package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eventtribe/ticketing/internal/adapter/cache"
	"github.com/eventtribe/ticketing/internal/adapter/handler"
	"github.com/eventtribe/ticketing/internal/adapter/mpesa"
	"github.com/eventtribe/ticketing/internal/adapter/mq"
	"github.com/eventtribe/ticketing/internal/adapter/repository/postgres"
	"github.com/eventtribe/ticketing/internal/core/ports"
	"github.com/eventtribe/ticketing/internal/core/services"
	"github.com/eventtribe/ticketing/internal/platform/auth"
	"github.com/eventtribe/ticketing/internal/platform/config"
	"github.com/eventtribe/ticketing/internal/platform/database"
	"github.com/eventtribe/ticketing/internal/platform/logger"
	"github.com/eventtribe/ticketing/internal/platform/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventtribe-ticketing: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, envLoaded, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	if !envLoaded {
		log.Info(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to db after retries: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher ports.EventPublisher = mq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		log.Info("Publishing booking events", zap.String("exchange", cfg.RabbitMQ.Exchange))
	} else {
		log.Info("RABBITMQ_URL not set, booking events are not published")
	}

	allowlist, err := cfg.CallbackAllowlist()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	bookingRepo := postgres.NewBookingRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	gateway := mpesa.NewClient(mpesa.Config{
		BaseURL:        cfg.MPesa.BaseURL,
		ConsumerKey:    cfg.MPesa.ConsumerKey,
		ConsumerSecret: cfg.MPesa.ConsumerSecret,
		ShortCode:      cfg.MPesa.ShortCode,
		Passkey:        cfg.MPesa.Passkey,
		CallbackURL:    cfg.CallbackURL(),
		Timeout:        cfg.MPesa.Timeout,
	}, redisClient, mpesa.WithLogger(log.Named("mpesa")), mpesa.WithMetrics(m))

	guard := cache.NewPaymentGuard(redisClient, cfg.Payment.InflightTTL)

	common := []services.Option{services.WithLogger(log), services.WithMetrics(m)}
	paymentService := services.NewPaymentService(bookingRepo, gateway, guard, common...)
	callbackService := services.NewCallbackService(bookingRepo, publisher, common...)
	checkInService := services.NewCheckInService(bookingRepo, eventRepo, publisher, common...)

	if cfg.Reconcile.Enabled {
		reconciler := services.NewReconciler(bookingRepo, gateway, callbackService, services.ReconcilerConfig{
			Interval: cfg.Reconcile.Interval,
			After:    cfg.Reconcile.After,
			Batch:    cfg.Reconcile.Batch,
		}, services.WithLogger(log.Named("reconciler")), services.WithMetrics(m))

		// Deferred after the stores so the sweep finishes before they close.
		var wg sync.WaitGroup
		defer func() {
			stop()
			wg.Wait()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			reconciler.Run(ctx)
		}()
	}

	router := handler.Router{
		Payments: handler.NewPaymentHandler(paymentService, callbackService, cfg.RequestTimeout, log),
		CheckIns: handler.NewCheckInHandler(checkInService, handler.NewRateLimiter(rate.Limit(cfg.CheckIn.Rate), cfg.CheckIn.Burst), log),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}, log),
		CallbackGuard: handler.NewCallbackGuard(cfg.MPesa.CallbackToken, allowlist, cfg.MPesa.CallbackTrustProxy, log.Named("callback")),
		Sessions:      auth.NewVerifier(cfg.JWTSecret),
		Gatherer:      reg,
		Log:           log,
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}
