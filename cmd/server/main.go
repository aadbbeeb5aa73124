package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trogers1052/finance-tracker-system/internal/alerts"
	"github.com/trogers1052/finance-tracker-system/internal/api"
	"github.com/trogers1052/finance-tracker-system/internal/config"
	"github.com/trogers1052/finance-tracker-system/internal/database"
	"github.com/trogers1052/finance-tracker-system/internal/ingest"
	"github.com/trogers1052/finance-tracker-system/internal/notify"
	"github.com/trogers1052/finance-tracker-system/internal/projection"
	"github.com/trogers1052/finance-tracker-system/internal/quotes"
	"github.com/trogers1052/finance-tracker-system/internal/scheduler"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	quoteClient := quotes.NewClient(quotes.Config{
		BaseURL:        cfg.Quotes.BaseURL,
		RequestTimeout: cfg.Quotes.RequestTimeout,
		CacheTTL:       cfg.Quotes.CacheTTL,
	}, rdb, log.With().Str("component", "quotes").Logger())

	producer := notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
	defer producer.Close()

	evaluator := alerts.NewEvaluator(db, quoteClient, producer, log.With().Str("component", "alerts").Logger())
	syncer := scheduler.NewSyncer(db, log.With().Str("component", "scheduler").Logger())
	engine := projection.NewEngine(db, projection.DefaultWindowMonths)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := ingest.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.TransactionTopic,
		cfg.Kafka.ConsumerGroupID,
		db,
		log.With().Str("component", "ingest").Logger(),
	)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("transaction consumer stopped")
		}
	}()

	go runAlertLoop(ctx, evaluator, cfg.Jobs.AlertEvalInterval)
	go runSyncLoop(ctx, syncer, cfg.Jobs.ObligationSyncInterval)

	handler := api.NewHandler(db, syncer, evaluator, engine, quoteClient, log.With().Str("component", "api").Logger())
	router := api.SetupRoutes(handler)

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// runAlertLoop evaluates active price alerts on a fixed interval.
func runAlertLoop(ctx context.Context, evaluator *alerts.Evaluator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := evaluator.EvaluateAll(ctx, time.Now())
			if err != nil {
				log.Error().Err(err).Msg("alert evaluation cycle failed")
				continue
			}
			if summary.Evaluated > 0 {
				log.Info().
					Int("evaluated", summary.Evaluated).
					Int("triggered", summary.Triggered).
					Int("skipped", summary.Skipped).
					Int("failed", summary.Failed).
					Msg("alert evaluation cycle complete")
			}
		}
	}
}

// runSyncLoop rolls overdue repeating obligations forward on a fixed interval.
func runSyncLoop(ctx context.Context, syncer *scheduler.Syncer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := syncer.SyncDueDates(ctx, time.Now())
			if err != nil {
				log.Error().Err(err).Msg("obligation sync cycle failed")
				continue
			}
			if summary.Advanced > 0 || summary.Failed > 0 {
				log.Info().
					Int("scanned", summary.Scanned).
					Int("advanced", summary.Advanced).
					Int("failed", summary.Failed).
					Msg("obligation sync cycle complete")
			}
		}
	}
}
