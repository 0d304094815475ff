package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"tulumreporta/backend/internal/api/handler"
	"tulumreporta/backend/internal/bot"
	"tulumreporta/backend/internal/config"
	"tulumreporta/backend/internal/editlink"
	"tulumreporta/backend/internal/geocoder"
	"tulumreporta/backend/internal/media"
	"tulumreporta/backend/internal/models"
	"tulumreporta/backend/internal/moderation"
	"tulumreporta/backend/internal/session"
	"tulumreporta/backend/internal/storage"
	"tulumreporta/backend/internal/telegram"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	if err := db.AutoMigrate(&models.Report{}, &models.EditToken{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis only backs delivery de-duplication; the service runs without it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
	} else {
		log.Println("Warning: REDIS_ADDR not set, duplicate deliveries will not be filtered")
	}

	log.Println("Database connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Tulum Reporta backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set!")
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	links := editlink.NewResolver(s, cfg.EditTokenSecret, config.EditTokenTTL)

	engine := &bot.Engine{
		Sessions:      session.NewStore(),
		Storage:       s,
		Geocoder:      geocoder.NewOpenCage(cfg.OpenCageAPIKey, config.TulumBounds, cfg.UpstreamTimeout),
		Links:         links,
		Bounds:        config.TulumBounds,
		PublicBaseURL: cfg.PublicBaseURL,
		AdminPanelURL: cfg.AdminPanelURL,
	}
	if cfg.AdminChatID != 0 {
		engine.AdminChatID = strconv.FormatInt(cfg.AdminChatID, 10)
	}

	dispatcher := bot.NewDispatcher(engine, cfg.UpstreamTimeout*4)
	botService, err := telegram.NewBotService(cfg.TelegramBotToken, dispatcher)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	notifier := &telegram.Notifier{BotAPI: botService.BotAPI}
	engine.Notifier = notifier
	engine.Media = media.NewS3Fetcher(botService.BotAPI, s3Client, cfg.S3Bucket, cfg.S3PublicBaseURL, cfg.UpstreamTimeout)

	mod := moderation.NewService(s, notifier, cfg.MapBaseURL)

	go dispatcher.Run()
	go botService.Run()

	r := gin.Default()
	h := handler.NewHandler(s, links, mod, config.TulumBounds, cfg.AdminModToken)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
