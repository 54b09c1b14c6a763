package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/openretail/storewatch/internal/api"
	"github.com/openretail/storewatch/internal/catalog"
	"github.com/openretail/storewatch/internal/config"
	"github.com/openretail/storewatch/internal/engine"
	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/incident"
	"github.com/openretail/storewatch/internal/ledger"
	"github.com/openretail/storewatch/internal/sink"
	"github.com/openretail/storewatch/internal/source"
)

func main() {
	var (
		mode        = flag.String("mode", "batch", "run mode: batch | stream")
		cfgPath     = flag.String("config", "", "path to YAML config (optional; built-in defaults otherwise)")
		dataDir     = flag.String("data", "data/input", "batch data directory")
		catalogPath = flag.String("catalog", "", "product catalog CSV (default <data>/products_list.csv)")
		outPath     = flag.String("out", "", "batch output file (default from config)")
		logLevel    = flag.String("log-level", "info", "log level: debug | info | warn | error")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	var (
		loader *config.Loader
		cfg    *config.Config
	)
	if *cfgPath != "" {
		var err error
		loader, err = config.NewLoader(*cfgPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loader.Config()
	} else {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	if *catalogPath == "" {
		*catalogPath = filepath.Join(*dataDir, "products_list.csv")
	}
	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		slog.Error("failed to load product catalog", "err", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "products", len(cat))

	switch *mode {
	case "batch":
		runBatch(cfg, cat, *dataDir, *outPath)
	case "stream":
		runStream(cfg, loader, cat, *dataDir)
	default:
		slog.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}
}

// runBatch loads every stream, runs all rules, finalizes the log once, and
// writes the complete JSONL output. Fatal errors leave no output file.
func runBatch(cfg *config.Config, cat catalog.Catalog, dataDir, outPath string) {
	streams, err := source.LoadDir(dataDir)
	if err != nil {
		slog.Error("failed to load streams", "err", err)
		os.Exit(1)
	}
	slog.Info("streams loaded",
		"pos", len(streams.POS),
		"rfid", len(streams.RFID),
		"queue", len(streams.Queue),
		"recognition", len(streams.Recognition),
		"snapshots", len(streams.Snapshots),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := engine.BuildInput(cfg.Thresholds, cat, streams)
	log := incident.NewLog()
	engine.NewBatch(cfg.Engine).Run(ctx, in, log)
	incidents := log.Finalize()

	if outPath == "" {
		outPath = cfg.Sinks.JSONL.Path
	}
	f, err := os.Create(outPath)
	if err != nil {
		slog.Error("failed to create output", "path", outPath, "err", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := incident.WriteJSONL(f, incidents); err != nil {
		slog.Error("failed to write output", "path", outPath, "err", err)
		os.Exit(1)
	}
	slog.Info("batch complete", "incidents", len(incidents), "output", outPath)
}

// runStream connects to the live feed and processes records until the feed
// closes or the process is signalled. The feed is dialled before any sink
// is opened so a dead feed retains no partial output.
func runStream(cfg *config.Config, loader *config.Loader, cat catalog.Catalog, dataDir string) {
	initial, err := source.LoadInitialInventory(filepath.Join(dataDir, "inventory_snapshots.jsonl"))
	if err != nil {
		slog.Error("failed to load initial inventory", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := source.DialFeed(ctx, cfg.Feed.Addr, time.Duration(cfg.Feed.DialTimeoutS)*time.Second)
	if err != nil {
		slog.Error("failed to connect feed", "addr", cfg.Feed.Addr, "err", err)
		os.Exit(1)
	}
	defer feed.Close()

	sinks, err := sink.NewFromConfig(ctx, cfg.Sinks)
	if err != nil {
		slog.Error("failed to open sinks", "err", err)
		os.Exit(1)
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				slog.Warn("sink close failed", "sink", s.Name(), "err", err)
			}
		}
	}()

	proc := engine.NewProcessor(cfg, cat, ledger.New(initial), incident.NewLog(), sinks)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	if loader != nil {
		loader.OnChange(func(newCfg *config.Config) {
			if err := config.Validate(newCfg); err != nil {
				slog.Warn("hot-reload skipped: config invalid", "err", err)
				return
			}
			proc.SwapConfig(newCfg)
			slog.Info("thresholds hot-reloaded")
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── Admin HTTP server ─────────────────────────────────────────────────────
	var admin *http.Server
	if cfg.Admin.Addr != "" {
		admin = &http.Server{
			Addr:         cfg.Admin.Addr,
			Handler:      api.New(proc, loader),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			slog.Info("admin server starting", "addr", cfg.Admin.Addr)
			if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("admin server error", "err", err)
			}
		}()
	}

	// ── Graceful shutdown on signal ───────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("shutting down…")
		cancel()
	}()

	err = feed.Run(ctx, func(ev event.Event) {
		proc.Process(ctx, ev)
	})
	if err != nil {
		slog.Error("feed error", "err", err)
	}

	if admin != nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = admin.Shutdown(shutCtx)
	}
	slog.Info("stream complete", "records", proc.Records(), "incidents", proc.Incidents())
}
