package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"stockpulse/config"
	"stockpulse/internal/alerts"
	"stockpulse/internal/api"
	"stockpulse/internal/history"
	"stockpulse/internal/logger"
	"stockpulse/internal/markethours"
	"stockpulse/internal/metrics"
	"stockpulse/internal/notification"
	"stockpulse/internal/quotes"
	redisstore "stockpulse/internal/store/redis"
	"stockpulse/internal/store/sqlite"
	"stockpulse/internal/stream"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg := config.Load()
	log := logger.Init("quoteserver", logger.ParseLevel(cfg.LogLevel))
	m := metrics.New(prometheus.DefaultRegisterer)
	clock := markethours.SystemClock{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Quote source
	src := quotes.NewChartAPISource(cfg.QuoteBaseURL, clock)

	// Optional Redis last-quote cache
	var cache *redisstore.Cache
	if cfg.RedisAddr != "" {
		c, err := redisstore.NewCache(redisstore.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Warn("redis unavailable, running without quote cache", "addr", cfg.RedisAddr, "err", err)
		} else {
			cache = c
			defer cache.Close()
			log.Info("quote cache connected", "addr", cfg.RedisAddr)
		}
	}

	// Alert repository: SQLite when a path is configured, in-memory
	// otherwise.
	var repo alerts.Repository
	if cfg.SQLitePath != "" {
		r, err := sqlite.New(sqlite.RepoConfig{DBPath: cfg.SQLitePath})
		if err != nil {
			log.Error("sqlite open failed", "path", cfg.SQLitePath, "err", err)
			os.Exit(1)
		}
		defer r.Close()
		repo = r
		log.Info("alert store on sqlite", "path", cfg.SQLitePath)
	} else {
		repo = alerts.NewMemoryRepository()
		log.Info("alert store in memory")
	}

	alertSvc := alerts.NewService(repo, clock)
	evaluator := alerts.NewEvaluator(repo, src, buildNotifier(cfg, log), clock, m, log)

	window := history.NewWindow(cfg.HistorySize)
	broadcaster := stream.NewBroadcaster(stream.Config{
		PollInterval:      cfg.PollInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		FetchTimeout:      cfg.FetchTimeout,
		History:           window,
	}, src, cache, clock, m, log)
	go broadcaster.Run(ctx)

	// Scheduled evaluation sweeps
	var sched *cron.Cron
	if cfg.SweepSchedule != "" {
		sched = cron.New()
		_, err := sched.AddFunc(cfg.SweepSchedule, func() {
			res, err := evaluator.Sweep(ctx)
			if err != nil {
				log.Error("scheduled sweep failed", "err", err)
				return
			}
			log.Info("scheduled sweep done",
				"checked", res.Checked, "failed", res.Failed, "triggered", len(res.Triggered))
		})
		if err != nil {
			log.Error("invalid sweep schedule", "spec", cfg.SweepSchedule, "err", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
		log.Info("sweep scheduler started", "spec", cfg.SweepSchedule)
	}

	srv := &api.Server{
		Alerts:      alertSvc,
		Evaluator:   evaluator,
		Broadcaster: broadcaster,
		Quotes:      src,
		Cache:       cache,
		History:     window,
		Metrics:     m,
		Log:         log,
	}
	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.NewRouter(),
	}

	go func() {
		log.Info("listening", "addr", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			cancel()
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info("shutting down", "signal", s.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	cancel()
}

// buildNotifier assembles the configured notification backends. With
// nothing configured, triggered alerts only go to the log.
func buildNotifier(cfg *config.Config, log *slog.Logger) notification.Notifier {
	var backends notification.Multi
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
		log.Info("telegram notifications enabled")
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
		log.Info("webhook notifications enabled", "url", cfg.WebhookURL)
	}
	if len(backends) == 0 {
		return nil
	}
	return backends
}
