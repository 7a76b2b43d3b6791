package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/veto/internal/api/rest"
	"github.com/fortuna/veto/internal/api/websocket"
	"github.com/fortuna/veto/internal/bot"
	"github.com/fortuna/veto/internal/publisher"
	"github.com/fortuna/veto/internal/reminder"
	"github.com/fortuna/veto/internal/resolve"
	"github.com/fortuna/veto/internal/results"
	"github.com/fortuna/veto/internal/scrape"
	"github.com/fortuna/veto/internal/store"
	"github.com/fortuna/veto/internal/store/repository"
)

const (
	serviceName    = "veto"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Valorant Match Results Service", serviceName, serviceVersion)

	// Load configuration from environment
	config := loadConfig()

	// Initialize database connection (optional: reminders and settings
	// need it, match lookups do not)
	var db *store.Database
	var reminderRepo *repository.ReminderRepository
	var settingsRepo *repository.SettingsRepository
	if config.DatabaseDSN != "" {
		var err error
		db, err = store.NewDatabase(config.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		log.Println("✓ Connected to database")

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Println("✓ Database migrations applied")

		reminderRepo = repository.NewReminderRepository(db)
		settingsRepo = repository.NewSettingsRepository(db)
	} else {
		log.Println("⚠️  DATABASE_DSN not set: reminders and venue settings disabled")
	}

	// Build the results pipeline
	resolver := resolve.New()
	svc := results.NewService(config.VLRBaseURL, scrape.NewClient(), resolver)

	if config.EnableChromeFetch {
		chrome, err := scrape.NewChromeClient()
		if err != nil {
			log.Printf("⚠️  Chrome fallback unavailable: %v (continuing without)", err)
		} else {
			defer chrome.Close()
			svc.SetFallbackFetcher(chrome)
			log.Println("✓ Chrome fallback fetcher enabled")
		}
	}

	// Optional Redis stream publisher for refresh events
	if config.RedisURL != "" {
		redisPublisher, err := publisher.NewRedisPublisher(config.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable: %v (continuing without stream publishing)", err)
		} else {
			defer redisPublisher.Close()
			svc.AddPublisher(redisPublisher)
			log.Println("✓ Redis publisher initialized")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telegram bot
	var tgBot *bot.Bot
	if config.TelegramToken != "" {
		var err error
		tgBot, err = bot.New(config.TelegramToken, svc, reminderRepo, settingsRepo)
		if err != nil {
			log.Fatalf("Failed to create Telegram bot: %v", err)
		}
		go tgBot.Start()
		defer tgBot.Stop()
	} else {
		log.Println("⚠️  TELEGRAM_TOKEN not set: bot disabled")
	}

	// Reminder scheduler needs both the store and a delivery channel
	if reminderRepo != nil && tgBot != nil {
		sched := reminder.NewScheduler(reminderRepo, tgBot)
		sched.SetInterval(config.PollInterval)
		sched.SetZoneSource(tgBot.ZoneFor)
		go sched.Run(ctx)
	}

	// Scrape health monitor, announcing through the bot when configured
	alert := func(msg string) { log.Printf("⚠️  ALERT: %s", msg) }
	if tgBot != nil {
		alert = func(msg string) {
			log.Printf("⚠️  ALERT: %s", msg)
			tgBot.Announce(msg)
		}
	}
	go svc.RunHealthMonitor(ctx, config.PollInterval, alert)

	// Initialize REST API server
	restServer := rest.NewServer(config.RESTPort, svc, db)
	go func() {
		log.Printf("Starting REST API server on port %s", config.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", config.RESTPort)

	// Initialize WebSocket server
	wsServer := websocket.NewServer()
	svc.AddPublisher(wsServer)
	go func() {
		log.Printf("Starting WebSocket server on port %s", config.WSPort)
		if err := wsServer.Start(config.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ WebSocket server listening on :%s", config.WSPort)
	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", config.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", config.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

type Config struct {
	DatabaseDSN       string
	RedisURL          string
	TelegramToken     string
	RESTPort          string
	WSPort            string
	VLRBaseURL        string
	EnableChromeFetch bool
	PollInterval      time.Duration
}

func loadConfig() Config {
	poll := 5 * time.Minute
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			poll = d
		} else {
			log.Printf("⚠️  Ignoring invalid POLL_INTERVAL %q", v)
		}
	}

	return Config{
		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		RedisURL:          os.Getenv("REDIS_URL"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		RESTPort:          getEnv("REST_PORT", "8080"),
		WSPort:            getEnv("WS_PORT", "8081"),
		VLRBaseURL:        getEnv("VLR_BASE_URL", scrape.BaseURL),
		EnableChromeFetch: getEnv("ENABLE_CHROME_FETCH", "false") == "true",
		PollInterval:      poll,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
