// Command detector runs one certificate expiry scan and exits.
// Schedule it externally (cron, k8s CronJob).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/config"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/detector"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/queue"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func main() {
	if err := run(); err != nil {
		logger.Error("Detector run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 10*time.Minute)
	defer cancelTimeout()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}

	var publisher detector.Publisher
	if cfg.AMQPURL != "" {
		broker, err := queue.Open(cfg.AMQPURL, cfg.QueueName, logger)
		if err != nil {
			return err
		}
		defer broker.Close()
		publisher = broker
	}

	det := detector.New(db, publisher, cfg.ExpiryWindowDays, cfg.ComplianceFallbackEmail, logger)
	res, err := det.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Detector run complete", "scanned", res.Scanned, "created", len(res.Created), "refreshed", res.Refreshed, "blocked", res.Blocked)
	return nil
}
