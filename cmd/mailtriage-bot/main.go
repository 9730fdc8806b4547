package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailtriage/internal/auth"
	"mailtriage/internal/bot"
	"mailtriage/internal/cache"
	"mailtriage/internal/config"
	"mailtriage/internal/gmail"
	"mailtriage/internal/ingest"
	"mailtriage/internal/remote"
	"mailtriage/internal/repository"
	"mailtriage/internal/service"
	"mailtriage/internal/store"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			log.Printf("[warn] %v", err)
		}
	}()

	// Records come from the API server when one is configured, otherwise
	// from the local database.
	var (
		records store.RecordStore
		session service.Session = auth.Static(true)
	)
	if cfg.APIURL != "" {
		records = remote.New(cfg.APIURL, cfg.APIToken, cfg.APITimeout)
		if cfg.JWTSecret != "" {
			session = auth.NewTokenSession(auth.NewService(cfg.JWTSecret, cfg.TokenTTL), cfg.APIToken)
		}
		log.Printf("[info] using api at %s", cfg.APIURL)
	} else {
		if cfg.SeedDemoData {
			if err := repository.SeedDemoData(ctx, db); err != nil {
				log.Fatalf("seed: %v", err)
			}
		}
		records = store.NewLocalFromDB(db)
		log.Printf("[info] using local database %s", cfg.DatabaseURL)
	}

	entityCache := cache.New()
	defer entityCache.Close()

	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	svc := service.New(records, entityCache,
		service.WithNotifier(bot.NewChatNotifier(api)),
		service.WithSession(session),
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
	)
	telegramBot := bot.New(api, svc, repository.NewSubscriberRepository(db), cfg.ReportInterval)

	scheduler := service.NewScheduler(ctx, loc)
	sendReports := func(ctx context.Context) {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[warn] report: %v", err)
		}
	}
	if _, err := scheduler.Every("digest", cfg.ReportInterval, sendReports); err != nil {
		log.Fatalf("schedule reports: %v", err)
	}
	if cfg.DigestTime != "" {
		if _, err := scheduler.Daily("morning digest", cfg.DigestTime, sendReports); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
	}

	// Without an API server the bot imports mail itself.
	if cfg.APIURL == "" && cfg.GmailEnabled() {
		client, err := gmail.NewClient(ctx, cfg.GmailCredentials, cfg.GmailToken, cfg.GmailQuery)
		if err != nil {
			log.Fatalf("gmail: %v", err)
		}
		syncer := ingest.NewSyncer(client, repository.NewEmailRepository(db), 0)
		syncer.OnSync(func(int64) { svc.InvalidateEmails() })
		if _, err := scheduler.Every("gmail sync", cfg.SyncInterval, func(ctx context.Context) {
			if _, err := syncer.Sync(ctx); err != nil {
				log.Printf("[warn] gmail sync: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule gmail sync: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("[info] mailtriage bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
