package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"paperwatch/internal/arxiv"
	"paperwatch/internal/cache"
	"paperwatch/internal/enrich"
	"paperwatch/internal/notify"
	"paperwatch/internal/server"
	"paperwatch/internal/storage"
	"paperwatch/internal/watch"
)

// App is the fully wired application: the watcher daemon plus the
// optional HTTP surface, with the handles needed for shutdown.
type App struct {
	Watcher *watch.Watcher
	Server  *server.Server
	archive *storage.Archive
	closers []func() error
}

// LoadAndBuild reads the config file and assembles every component.
func LoadAndBuild(ctx context.Context, path string) (*App, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg)
}

func Build(ctx context.Context, cfg *Config) (*App, error) {
	app := &App{}

	httpClient := &http.Client{Timeout: cfg.ArXivTimeout()}
	client := arxiv.NewClient(cfg.ArXiv.BaseURL, httpClient)
	listing := arxiv.NewListing(cfg.ArXiv.ListingURL, httpClient)

	store, err := buildTranslationStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	translator, err := buildTranslator(cfg)
	if err != nil {
		return nil, err
	}
	enricher := enrich.New(translator, store)

	registry, err := watch.OpenRegistry(filepath.Join(cfg.Watch.DataDir, "watched_keywords.json"))
	if err != nil {
		return nil, fmt.Errorf("open keyword registry: %w", err)
	}
	watermark := watch.OpenWatermark(filepath.Join(cfg.Watch.DataDir, "last_check.json"))

	engine := watch.NewEngine(watch.EngineConfig{
		Provider:        client,
		Enricher:        enricher,
		Watermark:       watermark,
		Registry:        registry,
		PerKeywordLimit: cfg.Watch.PerKeywordLimit,
		EnrichWorkers:   cfg.Watch.EnrichWorkers,
	})

	archive, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	app.archive = archive
	app.closers = append(app.closers, archive.Close)

	notifiers, err := buildNotifiers(cfg, app)
	if err != nil {
		return nil, err
	}

	app.Watcher = watch.NewWatcher(watch.WatcherConfig{
		Engine:    engine,
		Registry:  registry,
		Archive:   archive,
		Notifiers: notifiers,
		Interval:  cfg.WatchInterval(),
		RunOnce:   cfg.Watch.RunOnce,
	})

	if cfg.Server.Enabled {
		app.Server = server.New(server.Config{
			Port:     cfg.Server.Port,
			FeedSize: cfg.Server.FeedSize,
		}, engine, app.Watcher, registry, archive, listing)
	}

	return app, nil
}

func buildTranslationStore(ctx context.Context, cfg *Config) (cache.Store[enrich.Translation], error) {
	switch cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedis[enrich.Translation](ctx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddr,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       cfg.CacheTTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("connect translation cache: %w", err)
		}
		return store, nil
	default:
		return cache.NewMemory[enrich.Translation](cfg.CacheTTL()), nil
	}
}

func buildTranslator(cfg *Config) (enrich.Translator, error) {
	switch cfg.Enrich.Provider {
	case "openai":
		return enrich.NewOpenAITranslator(cfg.Enrich.Model)
	case "test":
		slog.Warn("enrichment running in test mode, translations are canned")
		return enrich.TestTranslator{}, nil
	default:
		return enrich.NewOllamaTranslator(cfg.Enrich.Model)
	}
}

func buildNotifiers(cfg *Config, app *App) ([]watch.Notifier, error) {
	var notifiers []watch.Notifier

	if cfg.Email.Enabled {
		email, err := notify.NewEmail(notify.EmailConfig{
			Server:   cfg.Email.Server,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       splitRecipients(cfg.Email.To),
		})
		if err != nil {
			return nil, fmt.Errorf("build email notifier: %w", err)
		}
		notifiers = append(notifiers, email)
	}

	if cfg.Discord.Enabled {
		discord, err := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("build discord notifier: %w", err)
		}
		notifiers = append(notifiers, discord)
		app.closers = append(app.closers, discord.Close)
	}

	return notifiers, nil
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if addr := strings.TrimSpace(p); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Close releases every component that holds an external resource.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
