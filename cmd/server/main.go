package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tripledger/internal/config"
	"github.com/mmynk/tripledger/internal/notify"
	"github.com/mmynk/tripledger/internal/server"
	"github.com/mmynk/tripledger/internal/service"
	"github.com/mmynk/tripledger/internal/storage/sqlite"
	"github.com/mmynk/tripledger/pkg/logging"
)

func main() {
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage ready", "path", cfg.SQLiteDBPath)

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}
	defer notifier.Close()

	trips := service.NewTripService(store, notifier)
	ledger := service.NewLedgerService(store)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(trips, ledger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildNotifier selects the notification backend. The log backend simulates
// delivery by writing structured log lines; the amqp backend publishes
// events to RabbitMQ.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	switch cfg.NotifierBackend {
	case config.NotifierAMQP:
		notifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		slog.Info("Notifications via AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		return notifier, nil
	default:
		return notify.NewLogNotifier(), nil
	}
}
