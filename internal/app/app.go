package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ainews/internal/config"
	"ainews/internal/infrastructure/feed"
	"ainews/internal/infrastructure/llm"
	"ainews/internal/infrastructure/ratelimit"
	"ainews/internal/infrastructure/scheduler"
	"ainews/internal/infrastructure/scrape"
	"ainews/internal/infrastructure/storage"
	"ainews/internal/infrastructure/telegram"
	"ainews/internal/logging"
	"ainews/internal/ports"
	"ainews/internal/server"
	"ainews/internal/source"
	"ainews/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	server    *server.Server
	scheduler *usecase.CycleScheduler
}

// New builds a runnable application instance. Store construction fails fast
// on missing credentials.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := buildStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}

	var model ports.ChatModel
	if cfg.LLM.APIKey != "" {
		model = llm.NewClient(cfg.LLM)
	} else {
		baseLogger.Warn("no llm api key configured, enrichment runs on fallbacks only")
	}

	registry := source.NewRegistry()
	registry.Register(feed.NewNewsAdapter(cfg.Sources.News, nil, baseLogger.With("component", "adapter.news")))
	registry.Register(feed.NewArxivAdapter(cfg.Sources.Arxiv, nil, baseLogger.With("component", "adapter.arxiv")))
	registry.Register(scrape.NewYouTubeAdapter(cfg.Sources.YouTube, nil, baseLogger.With("component", "adapter.youtube")))

	limiters := map[string]ports.Limiter{}
	if throttle := cfg.Sources.Arxiv.ThrottleInterval(); throttle > 0 {
		limiters["arxiv"] = ratelimit.NewInterval(throttle)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry: registry,
		Enricher: usecase.NewEnricher(model, baseLogger.With("component", "enricher")),
		Gate:     usecase.NewGate(store, baseLogger.With("component", "gate")),
		Limiters: limiters,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	app := &Application{
		cfg:    cfg,
		logger: baseLogger,
		server: server.New(pipeline, store, baseLogger.With("component", "server")),
	}

	if cfg.Scheduler.Enabled {
		var notifier ports.Notifier
		tg := cfg.Notifications.Telegram
		if tg.BotToken != "" && tg.ChatID != "" {
			notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
		}
		driver := scheduler.NewTickerScheduler(cfg.Scheduler.IntervalDuration())
		app.scheduler = usecase.NewCycleScheduler(driver, pipeline, notifier, baseLogger.With("component", "scheduler"))
	}

	return app, nil
}

func buildStore(cfg config.StoreConfig) (ports.Store, error) {
	if cfg.PostgresDSN != "" {
		return storage.OpenPostgres(cfg.PostgresDSN)
	}
	return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
}

// Run starts the optional background scheduler and serves HTTP until the
// context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() {
			_ = a.scheduler.Stop(context.Background())
		}()
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
