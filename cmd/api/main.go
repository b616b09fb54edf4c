package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/assistant"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/compliance"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/config"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/detector"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/driver"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/hold"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/mailer"
	mw "github.com/ali-abouelaish/FleetManager-sub003/internal/middleware"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/queue"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/route"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/school"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/vehicle"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func main() {
	if err := run(); err != nil {
		logger.Error("API server stopped", "error", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup (redis, rabbitmq) always runs.
func run() error {
	// 0. Load config (.env + environment)
	cfg := config.Load()

	// 1. Jalankan migration dulu
	m, err := migrate.New("file://migrations", cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "gagal membuat instance migrasi")
	}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "gagal menjalankan migration")
		}
		logger.Info("Tidak ada migration baru, schema sudah up to date")
	} else {
		logger.Info("Migration berhasil dijalankan")
	}

	// 2. Buka koneksi database dengan GORM
	gormDB, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return errors.Wrap(err, "gagal membuka koneksi database dengan GORM")
	}

	// 3. Optional infrastructure: redis (rate limit) and rabbitmq (detector publishing)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}
	var publisher detector.Publisher
	if cfg.AMQPURL != "" {
		broker, err := queue.Open(cfg.AMQPURL, cfg.QueueName, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, detected notifications will not be queued", "error", err)
		} else {
			defer broker.Close()
			publisher = broker
		}
	}

	// 4. Services
	users := user.NewDirectory(gormDB)
	holds := hold.NewPropagator(gormDB, logger)
	smtp := mailer.NewSMTPSender(cfg.SMTP, logger)
	if !smtp.Configured() {
		logger.Warn("SMTP not configured, emails will be skipped")
	}
	dispatcher := notification.NewDispatcher(gormDB, smtp, holds, users, cfg.AppURL, cfg.SiteURL, logger)
	det := detector.New(gormDB, publisher, cfg.ExpiryWindowDays, cfg.ComplianceFallbackEmail, logger)
	tracker := compliance.NewTracker(gormDB)
	redact := cfg.IsProduction()

	// 5. Inisialisasi Gin
	// gin.Default() sudah include logger + recovery middleware
	if redact {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(mw.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	limit := func(scope string) gin.HandlerFunc {
		return mw.RateLimiter(rdb, scope, cfg.RateLimitPerMinute, time.Minute, logger)
	}

	// auth login (tidak pakai middleware)
	authH := auth.NewHandler(gormDB, cfg.JWTSecret)
	authH.RegisterRoutes(router)

	notifH := notification.NewHandler(dispatcher, redact)
	notifH.RegisterPublicRoutes(router.Group("", limit("public")))

	// 6. Group API yang butuh auth
	api := router.Group("/api")
	api.Use(authH.AuthMiddleware())

	vehicle.NewHandler(gormDB).RegisterRoutes(api)
	driver.NewHandler(gormDB).RegisterRoutes(api)
	assistant.NewHandler(gormDB).RegisterRoutes(api)
	route.NewHandler(gormDB).RegisterRoutes(api)
	school.NewHandler(gormDB).RegisterRoutes(api)
	user.NewHandler(gormDB).RegisterRoutes(api)

	notifH.RegisterRoutes(api)
	notifH.RegisterSendRoute(api.Group("", limit("send-email")))
	detector.NewHandler(det, redact).RegisterRoutes(api)
	compliance.NewHandler(tracker, redact).RegisterRoutes(api)
	hold.NewHandler(holds, dispatcher.Store, users, redact).RegisterRoutes(api)

	// 7. Start server
	addr := ":" + cfg.Port
	logger.Info("Server berjalan", "addr", addr, "env", cfg.AppEnv)
	return errors.Wrap(router.Run(addr), "gagal menjalankan HTTP server")
}
