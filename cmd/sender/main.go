// Command sender consumes detected notifications from RabbitMQ and emails them.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/config"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/hold"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/mailer"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/queue"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// systemActor resolves to no user, so holds from here have a null on_hold_set_by.
var systemActor = auth.Identity{Subject: "system:sender"}

func main() {
	if err := run(); err != nil {
		logger.Error("Sender stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}

	broker, err := queue.Open(cfg.AMQPURL, cfg.QueueName, logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	dispatcher := notification.NewDispatcher(db,
		mailer.NewSMTPSender(cfg.SMTP, logger),
		hold.NewPropagator(db, logger),
		user.NewDirectory(db),
		cfg.AppURL, cfg.SiteURL, logger)

	logger.Info("Sender started. Waiting for messages.", "queue", cfg.QueueName, "auto_hold", cfg.AutoHold)
	err = broker.Consume(ctx, dispatcher.QueueHandler(cfg.AutoHold, systemActor))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
