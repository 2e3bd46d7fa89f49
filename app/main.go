package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivkuz/rss-press/app/cache"
	"github.com/ivkuz/rss-press/app/cfg"
	"github.com/ivkuz/rss-press/app/config"
	"github.com/ivkuz/rss-press/app/feed"
	"github.com/ivkuz/rss-press/app/monitor"
	"github.com/ivkuz/rss-press/app/notion"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)
	slog.Info("Starting rss-press", "version", appCfg.Version)

	conf, err := config.Load(appCfg.ConfigFile)
	if err != nil {
		slog.Error("Failed to load subscriptions configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Subscriptions loaded", "platforms", len(conf.Platforms), "users", len(conf.Users()))

	fpCache := cache.Load(appCfg.CacheFile)
	kept, evicted := fpCache.EvictExpired()
	slog.Info("Cache ready", "entries", kept, "evicted", evicted)

	// An interrupt abandons the in-flight fetch; accumulated cache state is
	// still flushed below.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := feed.NewFetcher(appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second)
	transformer := feed.NewTransformer()

	mon := monitor.New(conf, fpCache, fetcher, transformer, setupPublisher(ctx, appCfg))

	if appCfg.ListUsers {
		fmt.Print(mon.FormatUsers())
		return
	}

	if appCfg.User != "" {
		result, err := mon.RunNamed(ctx, appCfg.User)
		if err != nil {
			slog.Error("Run failed", "error", err)
			fmt.Print(mon.FormatUsers())
			os.Exit(1)
		}
		if result.Err != nil {
			slog.Warn("No content fetched", "user", appCfg.User, "error", result.Err)
		}
	} else {
		mon.RunAll(ctx)
	}

	// Best-effort flush: per-user runs persist as they go, but an interrupt
	// can land mid-run.
	if err := fpCache.Persist(); err != nil {
		slog.Warn("Failed to persist cache on shutdown", "error", err)
	}
}

// setupPublisher wires the Notion publishing stage, or returns nil when it
// is not configured. A run without a publisher still fetches, displays, and
// caches entries.
func setupPublisher(ctx context.Context, appCfg *cfg.Cfg) monitor.Publisher {
	if appCfg.NotionToken == "" {
		slog.Warn("NOTION_TOKEN not set, publishing disabled")
		return nil
	}
	if appCfg.NotionParent == "" {
		slog.Warn("NOTION_PARENT_ID not set, publishing disabled")
		return nil
	}

	client := notion.NewClient(appCfg.NotionToken)

	databaseID, err := notion.EnsureDatabase(ctx, client, appCfg.NotionParent, appCfg.StateFile)
	if err != nil {
		slog.Error("Failed to set up Notion database, publishing disabled", "error", err)
		return nil
	}

	uploader := notion.NewUploader(client, time.Duration(appCfg.ImageTimeout)*time.Second)
	return notion.NewPublisher(client, uploader, databaseID)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
