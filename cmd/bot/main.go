package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockSentry/internal/config"
	"StockSentry/internal/follow"
	"StockSentry/internal/market"
	"StockSentry/internal/notifier"
	"StockSentry/internal/portfolio"
	"StockSentry/internal/quote"
	"StockSentry/internal/scheduler"
	"StockSentry/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockSentry starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Market calendar
	cal, err := market.NewCalendar(cfg.Market.Timezone, cfg.Market.OpenHour, cfg.Market.CloseHour)
	if err != nil {
		log.Fatalf("[FATAL] init market calendar: %v", err)
	}

	// Price fetcher
	fetcher := quote.NewTCBSFetcher(cfg.DataSource.BaseURL, cal, cfg.Proxy)
	log.Printf("[INFO] price source: %s", fetcher.Name())

	// Chat transport
	client := notifier.NewDiscordClient(cfg.Discord.BotToken, cfg.Proxy)
	if err := client.Login(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Persistent store
	var st store.Store
	if cfg.Storage.Backend == "sqlite" {
		ss, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("[FATAL] init sqlite store: %v", err)
		}
		defer ss.Close()
		st = ss
	} else {
		st = store.NewChatStore(client, client.BotID())
	}

	// Services and trackers
	portfolioSvc := portfolio.NewService(st, fetcher)
	followSvc := follow.NewService(st, client.BotID())
	portfolioTracker := portfolio.NewTracker(portfolioSvc, cal, client, client.BotID(), cfg.PortfolioInterval(), cfg.Tracking.TopMovers)
	followTracker := follow.NewTracker(followSvc, fetcher, cal, client, cfg.FollowInterval())

	// Scheduler
	sched := scheduler.New(client, portfolioTracker, followTracker)
	if err := sched.Initialize(); err != nil {
		log.Fatalf("[FATAL] initialize scheduler: %v", err)
	}
	defer sched.Destroy()
	if err := sched.StartAllTrackers(); err != nil {
		log.Fatalf("[FATAL] start trackers: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Command polling on the control channel
	commander := &scheduler.Commander{
		Scheduler: sched,
		Portfolio: portfolioSvc,
		Follow:    followSvc,
		Calendar:  cal,
	}
	go client.StartPolling(ctx, cfg.Discord.ControlChannel, commander.HandleCommand)
	log.Println("[INFO] command polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, sending summaries now")
		go sched.RunSummariesNow()
	}

	log.Println("[INFO] StockSentry is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockSentry stopped")
}
