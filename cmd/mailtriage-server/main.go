package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailtriage/internal/api"
	"mailtriage/internal/auth"
	"mailtriage/internal/config"
	"mailtriage/internal/gmail"
	"mailtriage/internal/ingest"
	"mailtriage/internal/repository"
	"mailtriage/internal/service"
	"mailtriage/internal/store"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	gmailAuth := flag.Bool("gmail-auth", false, "authorize Gmail access and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *gmailAuth {
		if err := gmail.Authorize(ctx, cfg.GmailCredentials, cfg.GmailToken, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("gmail auth: %v", err)
		}
		log.Printf("[info] gmail token saved to %s", cfg.GmailToken)
		return
	}

	if err := cfg.ValidateServer(); err != nil {
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
	if cfg.SeedDemoData {
		if err := repository.SeedDemoData(ctx, db); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	scheduler := service.NewScheduler(ctx, loc)
	if cfg.GmailEnabled() {
		client, err := gmail.NewClient(ctx, cfg.GmailCredentials, cfg.GmailToken, cfg.GmailQuery)
		if err != nil {
			log.Fatalf("gmail: %v", err)
		}
		syncer := ingest.NewSyncer(client, repository.NewEmailRepository(db), 0)
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

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(store.NewLocalFromDB(db), auth.NewService(cfg.JWTSecret, cfg.TokenTTL)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[warn] http shutdown: %v", err)
		}
	}()

	log.Printf("[info] mailtriage api listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http: %v", err)
	}
	log.Println("Shutdown complete.")
}
