package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"petcare/internal/config"
	"petcare/internal/database"
	"petcare/internal/repository"
)

func main() {
	_ = godotenv.Load()
	retention := flag.Duration("retention", 30*24*time.Hour, "keep settled webhook events newer than this")
	flag.Parse()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	cutoff := time.Now().UTC().Add(-*retention)
	deleted, err := repository.NewWebhookEventRepository(db).PurgeBefore(context.Background(), cutoff)
	if err != nil {
		log.Fatalf("cleanup webhook_events failed: %v", err)
	}
	log.Printf("journal cleanup completed: webhook_events=%d cutoff=%s", deleted, cutoff.Format(time.RFC3339))
}
