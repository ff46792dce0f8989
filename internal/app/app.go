package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"brainrot-feed/internal/alerting"
	"brainrot-feed/internal/config"
	"brainrot-feed/internal/extract"
	"brainrot-feed/internal/feed"
	"brainrot-feed/internal/fetcher"
	"brainrot-feed/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	feeds map[string]feed.Feed
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	a := &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Str("environment", cfg.App.Environment).Logger(),
		feeds:  cfg.FeedSet(),
	}
	a.Logger.Debug().Str("app", cfg.App.Name).Strs("feeds", a.feedNames()).Msg("application initialised")
	return a
}

func (a *App) newFetcher() fetcher.Fetcher {
	return fetcher.New(fetcher.Options{
		Timeout:      a.Config.HTTP.RequestTimeout,
		UserAgent:    a.Config.HTTP.UserAgent,
		MaxBodyBytes: a.Config.HTTP.MaxBodyBytes,
	}, a.Logger)
}

func (a *App) newService(f fetcher.Fetcher, opts ...service.Option) *service.Service {
	return service.New(f, a.Logger, opts...)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

func (a *App) resolveFeed(name string) (feed.Feed, error) {
	f, ok := a.feeds[strings.TrimSpace(name)]
	if !ok {
		return feed.Feed{}, fmt.Errorf("unknown feed %q (configured: %s)", name, strings.Join(a.feedNames(), ", "))
	}
	return f, nil
}

func (a *App) feedNames() []string {
	names := make([]string, 0, len(a.feeds))
	for name := range a.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *App) buildFilters(morethan, whitelisted string) (feed.Filters, error) {
	threshold, err := extract.ParseThreshold(morethan)
	if err != nil {
		return feed.Filters{}, fmt.Errorf("invalid morethan: %w", err)
	}
	window := a.Config.Window()
	return feed.Filters{
		Window:    &window,
		Threshold: threshold,
		Keyword:   strings.TrimSpace(whitelisted),
	}, nil
}

// LookupOptions configure a one-shot lookup.
type LookupOptions struct {
	Feed        string
	MoreThan    string
	Whitelisted string
}

// WatchOptions configure the watch loop.
type WatchOptions struct {
	Feed        string
	Interval    time.Duration
	MoreThan    string
	Whitelisted string
}

// SimulateOptions describe the synthetic record sent by simulate-alert.
type SimulateOptions struct {
	Feed    string
	Name    string
	Rate    string
	Locator string
}
