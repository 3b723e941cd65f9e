package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"classdash/internal/app"
	"classdash/internal/capture"
	"classdash/internal/config"
	appLog "classdash/internal/log"
	"classdash/internal/web"
)

const appVersion = "1.0.0"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	snapshot   bool
	debug      bool
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("classdash starting", "version", appVersion)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"school", conf.School.Name,
		"has_spreadsheet", conf.SpreadsheetURL != "",
		"ics_count", len(conf.ICS),
		"alarm_enabled", conf.Alarm.Enabled,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	engine, err := app.New(conf, flags.configPath, nil)
	if err != nil {
		appLog.Error("failed to create engine", err)
		os.Exit(1)
	}

	if flags.once {
		runOnce(ctx, engine)
		return
	}

	// Web API server.
	go func() {
		if err := web.Serve(ctx, engine, flags.debug); err != nil {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	// Optional periodic preview capture for always-on displays.
	if flags.snapshot {
		go runSnapshotLoop(ctx, conf)
	}

	if err := engine.Run(ctx); err != nil {
		appLog.Error("engine exited with error", err)
		os.Exit(1)
	}
	appLog.Info("classdash exiting")
}

// runOnce performs a single refresh and dumps the snapshot as JSON on
// stdout, useful for cron jobs and debugging a school's spreadsheet.
func runOnce(ctx context.Context, engine *app.App) {
	refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	engine.Refresh(refreshCtx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(engine.Snapshot()); err != nil {
		appLog.Error("failed to encode snapshot", err)
		os.Exit(1)
	}
}

// runSnapshotLoop captures the dashboard page to preview.png periodically.
func runSnapshotLoop(ctx context.Context, conf *config.Config) {
	const interval = 10 * time.Minute

	// Let the server come up and the first refresh land.
	select {
	case <-ctx.Done():
		return
	case <-time.After(15 * time.Second):
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		opts := capture.Options{
			URL:        "http://" + conf.Listen + "/",
			OutputPath: filepath.Join(conf.CacheDir, "preview.png"),
		}
		if err := capture.SnapshotPNG(ctx, opts); err != nil {
			appLog.Error("preview capture failed", err)
		} else {
			appLog.Debug("preview captured", "path", opts.OutputPath)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh, print the snapshot as JSON, and exit")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Periodically capture the dashboard page to preview.png")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()
	return cfg
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "classdash", "config.yaml")
	}
	return "./config.yaml"
}
