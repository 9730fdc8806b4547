package main

import (
	"flag"
	"fmt"
	"log"

	"mailtriage/internal/auth"
	"mailtriage/internal/config"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	subject := flag.String("subject", "mailtriage-bot", "token subject")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("MAILTRIAGE_JWT_SECRET is required")
	}

	token, err := auth.NewService(cfg.JWTSecret, cfg.TokenTTL).GenerateToken(*subject)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
