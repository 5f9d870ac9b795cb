package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/riyagarg17/CS520-Team5/internal/config"
	"github.com/riyagarg17/CS520-Team5/internal/database"
	"github.com/riyagarg17/CS520-Team5/internal/events"
	"github.com/riyagarg17/CS520-Team5/internal/handlers"
	"github.com/riyagarg17/CS520-Team5/internal/middleware"
	"github.com/riyagarg17/CS520-Team5/internal/notifier"
	"github.com/riyagarg17/CS520-Team5/internal/repository"
	"github.com/riyagarg17/CS520-Team5/internal/risk"
	"github.com/riyagarg17/CS520-Team5/internal/routes"
	"github.com/riyagarg17/CS520-Team5/internal/scheduler"
	"github.com/riyagarg17/CS520-Team5/internal/services"
	"github.com/riyagarg17/CS520-Team5/internal/storage"
	"github.com/riyagarg17/CS520-Team5/internal/tokenstore"
	"github.com/riyagarg17/CS520-Team5/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting carecompass core in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	patients := repository.NewMongoPatientRepo(db)
	doctors := repository.NewMongoDoctorRepo(db)

	// Ephemeral second-factor state: redis-backed when available, otherwise
	// process-local.
	var tokens tokenstore.Store
	if cfg.Redis.Enabled {
		rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err != nil {
			sugar.Fatal(err)
		}
		tokens = tokenstore.NewRedisStore(rdb, cfg.CodeTTL(), cfg.PendingTokenTTL())
	} else {
		sugar.Warn("Redis disabled; second-factor state is process-local")
		tokens = tokenstore.NewMemoryStore(cfg.CodeTTL(), cfg.PendingTokenTTL())
	}

	brevo := notifier.NewBrevoClient(cfg.Brevo.APIKey, cfg.Brevo.FromEmail, cfg.Brevo.FromName)
	if !brevo.IsConfigured() {
		sugar.Warn("Brevo client not fully configured. Email delivery will fail.")
	}
	mail := notifier.NewBreakerNotifier(brevo, sugar)

	var pub events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, sugar)
		defer func() {
			_ = pub.Close()
		}()
	}

	var licenses storage.LicenseStore = storage.NewMemoryLicenseStore()
	if cfg.S3.Enabled {
		licenses, err = storage.NewS3Store(context.Background(), cfg.S3.Region, cfg.S3.Bucket)
		if err != nil {
			sugar.Fatal(err)
		}
	} else {
		sugar.Warn("S3 disabled; license artifacts are kept in memory")
	}

	classifier := risk.NewHTTPClassifier(cfg.Risk.ModelURL)

	sched := scheduler.NewService(patients, doctors, mail, pub, sugar)
	auth := services.NewAuthService(patients, doctors, tokens, mail, cfg.JWT.Secret, cfg.SessionTTL(), sugar)
	profiles := services.NewProfileService(patients, doctors, licenses, classifier, mail, sugar)
	h := handlers.NewHandler(sched, auth, profiles, sugar)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})
	app.Use(cors.New())

	loginLimiter := middleware.NewRateLimiter(cfg.Security.LoginRatePerMinute, cfg.Security.LoginBurst)
	routes.Setup(app, h, cfg.JWT.Secret, loginLimiter)

	go func() {
		if err := app.Listen(":" + strconv.Itoa(cfg.App.Port)); err != nil {
			sugar.Errorf("server stopped: %v", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	sugar.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		sugar.Errorf("shutdown: %v", err)
	}
}
