package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ircd/internal/config"
	"ircd/internal/persistence"
	"ircd/internal/server"

	"github.com/joho/godotenv"
)

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func main() {
	// Optional .env for local development; absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: Could not load .env file: %v", err)
	}

	configPath := flag.String("config", getEnv("IRC_CONFIG", ""), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Config error: %v", err)
	}

	store, err := persistence.New(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to open store: %v", err)
	}
	defer store.Close()

	srv := server.New(cfg, store)

	webAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.WebPort)
	web := server.NewWebServer(srv, webAddr)
	go func() {
		if err := web.Start(); err != nil {
			log.Printf("ERROR: Status server error: %v", err)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("INFO: Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := web.Shutdown(ctx); err != nil {
			log.Printf("ERROR: Status server shutdown: %v", err)
		}
		if err := srv.Shutdown(); err != nil {
			log.Printf("ERROR: Server shutdown: %v", err)
		}
	}()

	log.Printf("INFO: Starting IRC server with host=%s port=%s", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Start(); err != nil {
		log.Fatalf("FATAL: Server error: %v", err)
	}
}
