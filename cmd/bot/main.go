package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	config "github.com/gpowereth/blogbot/configs"
	"github.com/gpowereth/blogbot/internal/api/handlers"
	"github.com/gpowereth/blogbot/internal/bot"
	job "github.com/gpowereth/blogbot/internal/jobs"
	"github.com/gpowereth/blogbot/internal/queue"
	"github.com/gpowereth/blogbot/internal/repository"
	"github.com/gpowereth/blogbot/internal/service"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if cfg.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}
	if err := repository.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	var client *asynq.Client
	var redisConn asynq.RedisClientOpt
	if cfg.RedisURI != "" {
		redisConn = asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client = asynq.NewClient(redisConn)
		defer client.Close()
	}

	postRepo := repository.NewPostRepository(db)

	r2Service := service.NewR2Service(*cfg)
	imageService := service.NewImageService()
	exportService := service.NewExportService(postRepo, cfg.ExportPath)
	postService := service.NewPostService(postRepo, r2Service)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	log.Printf("Authorized on account @%s", api.Self.UserName)

	handler := bot.NewHandler(cfg, api, bot.NewTelegramFetcher(api), postService, exportService, imageService, client)

	// cron jobs
	refreshJob := job.NewExportRefreshJob(postRepo, exportService, cfg.ImagesDir)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", refreshJob.Refresh)
	c.Start()

	if cfg.RedisURI != "" {
		queueW := queue.NewQueue(exportService)

		go func() {
			server := asynq.NewServer(redisConn, asynq.Config{
				Concurrency: 5,
			})

			mux := asynq.NewServeMux()
			mux.HandleFunc(queue.TaskTypeExportPosts, queueW.HandleExportPostsTask)

			log.Println("Starting the Asynq server...")
			if err := server.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	var app *fiber.App
	if cfg.StatusAddr != "" {
		app = fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				log.Printf("Error: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			},
		})
		app.Use(logger.New())

		status := handlers.NewStatusHandler(postRepo)
		app.Get("/healthz", status.Health)
		app.Get("/status", status.Status)

		go func() {
			if err := app.Listen(cfg.StatusAddr); err != nil {
				log.Fatalf("Failed to start status server: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	go func() {
		for update := range updates {
			handler.HandleUpdate(ctx, update)
		}
	}()

	log.Println("Blog bot is running")
	gracefulShutdown(api, app, cancel, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(api *tgbotapi.BotAPI, app *fiber.App, cancel context.CancelFunc, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down...")

	api.StopReceivingUpdates()
	cancel()

	if app != nil {
		if err := app.Shutdown(); err != nil {
			log.Printf("Failed to shut down status server: %v", err)
		}
	}

	closeDB(db)
	log.Println("Shutdown complete.")
}
