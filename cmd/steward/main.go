// # cmd/steward/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"steward/internal/core/app"
	"steward/internal/core/config"
	"steward/internal/shared/observability"
)

var (
	configPath   = flag.String("config", defaultConfigPath, "Path to config file")
	serveMode    = flag.Bool("serve", false, "Run the HTTP server")
	watchMode    = flag.Bool("watch", false, "Watch for changes with a terminal UI")
	listenAddr   = flag.String("listen", "", "Listen address for -serve (overrides config)")
	logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	reportFormat = flag.String("report", "text", "Report format for one-shot scans: text, markdown, json")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

const (
	version           = "1.0.0"
	defaultConfigPath = "./steward.toml"
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("steward v%s\n", version)
		os.Exit(0)
	}

	if *serveMode && *watchMode {
		fmt.Fprintln(os.Stderr, "-serve and -watch cannot be used together")
		os.Exit(1)
	}

	cfg, err := loadConfiguration(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, flag.Args())
	anchorCachePath(cfg)

	setupLogging(cfg, *watchMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(ctx, cfg.Tracing.Endpoint, version)
		if err != nil {
			slog.Warn("tracing disabled", "endpoint", cfg.Tracing.Endpoint, "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Warn("tracing shutdown failed", "error", err)
				}
			}()
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	switch {
	case *serveMode:
		err = runServe(ctx, a)
	case *watchMode:
		err = runWatch(ctx, a)
	default:
		err = runOnce(ctx, a, *reportFormat)
	}
	if err != nil && ctx.Err() == nil {
		slog.Error("steward failed", "error", err)
		os.Exit(1)
	}
}

// loadConfiguration reads the config file named by the flag. A missing file
// at the default location is not an error; any explicitly named path must
// exist.
func loadConfiguration(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && os.IsNotExist(err) {
		return config.Default(), nil
	}
	return nil, err
}

// applyOverrides folds flags and the positional path argument into the
// loaded configuration.
func applyOverrides(cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Scan.Paths = args
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
}

// anchorCachePath pins a relative cache path to the detected project root,
// so runs started from a subdirectory share one store. Failures leave the
// path as configured.
func anchorCachePath(cfg *config.Config) {
	if !cfg.Cache.Enabled || filepath.IsAbs(cfg.Cache.Path) {
		return
	}
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	resolved, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return
	}
	cfg.Cache.Path = resolved.CachePath
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging installs the default text logger. In watch mode logs go to
// a state file instead of stderr so they do not corrupt the TUI.
func setupLogging(cfg *config.Config, tui bool) {
	var output *os.File = os.Stderr
	if tui {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err == nil {
			if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
				output = f
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "steward", "steward.log")
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "steward", "steward.log")
	}
	return "steward.log"
}
