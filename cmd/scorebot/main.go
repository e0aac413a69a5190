package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dkotenko/vlrbot/internal/bot"
	pkgconfig "github.com/dkotenko/vlrbot/internal/pkg/config"
	"github.com/dkotenko/vlrbot/internal/pkg/health"
	"github.com/dkotenko/vlrbot/internal/pkg/logging"
	"github.com/dkotenko/vlrbot/internal/session"
	"github.com/dkotenko/vlrbot/internal/tracker"
	"github.com/dkotenko/vlrbot/internal/vlr"
)

const defaultConfigPath = "configs/production.yaml"

type flags struct {
	configPath string
	runFor     time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scorebot failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	slog.Info("Starting scorebot...")

	f := parseFlags()

	slog.Info("Loading config", "path", f.configPath)
	cfg, err := pkgconfig.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required: set telegram.token in config or TELEGRAM_BOT_TOKEN env")
	}

	logging.SetupLogger(&cfg.Logging, "scorebot")

	ctx, cancel := createContext(f.runFor)
	defer cancel()
	setupSignalHandler(cancel)

	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return err
	}

	api, err := bot.NewAPI(&cfg.Telegram)
	if err != nil {
		return err
	}
	sender := bot.NewSender(api)

	client := vlr.NewClient(&cfg.VLR)
	registry := tracker.NewRegistry(client, sender, clockwork.NewRealClock(), cfg.Tracker)
	router := bot.NewRouter(sender, client, registry, sessions, cfg.Tracker)

	if cfg.Health.Port > 0 {
		health.Run(ctx, health.AddrFor(cfg.Health.Port), "scorebot", registry, cfg.Health.ReadHeaderTimeout)
	}

	b := bot.New(api, cfg.Telegram.UpdateTimeout, router)
	err = b.Run(ctx)

	slog.Info("Shutting down, stopping trackers", "active", registry.Count())
	registry.Shutdown()
	return err
}

func buildSessionStore(cfg *pkgconfig.Config) (session.Store, error) {
	if !cfg.Redis.Enabled {
		slog.Info("Session store: in-memory")
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis session store: %w", err)
	}
	slog.Info("Session store: redis", "addr", cfg.Redis.Addr)
	return store, nil
}

func parseFlags() flags {
	var f flags
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}
	flag.StringVar(&f.configPath, "config", defaultConfig, "Path to config file")
	flag.DurationVar(&f.runFor, "run-for", 0, "Auto-stop after duration. 0 = run until SIGINT/SIGTERM")
	flag.Parse()
	return f
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		slog.Info("Auto-stop enabled", "run_for", runFor)
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	}()
}
