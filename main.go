package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"coffee-telegram/bot"
	"coffee-telegram/config"
	"coffee-telegram/db"
	"coffee-telegram/logger"
	"coffee-telegram/notify"
	"coffee-telegram/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TOKEN not set")
		os.Exit(1)
	}

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(cfg)
		return
	}

	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	// Optional auto-migration (useful in production and for fresh DBs).
	// Set AUTO_MIGRATE=1 (or "true") to enable.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(context.Background(), false); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	log := logger.New("coffee-telegram")
	ctx := context.Background()

	catalog, err := services.LoadCatalog(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}

	history := services.NewHistory(services.PGSlotStore{})
	if err := history.Load(ctx); err != nil {
		if errors.Is(err, services.ErrCorruptHistory) {
			log.Error("order history slot is corrupt, starting with an empty history", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, "history:", err)
			os.Exit(1)
		}
	}

	var notifier *notify.Publisher
	if cfg.AMQP.URL != "" {
		notifier, err = notify.New(cfg.AMQP.URL, log)
		if err != nil {
			log.Error("rabbitmq init failed, order events disabled", "error", err)
			notifier = nil
		} else {
			defer notifier.Close()
		}
	}

	b, err := bot.New(cfg, log, catalog, history, notifier)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}

	fmt.Println("Bot started.")
	b.Start()
}

func runMigrate(cfg *config.Config) {
	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := applyMigrations(context.Background(), true); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
