package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"brainrot-feed/internal/alerting"
	"brainrot-feed/internal/api"
	"brainrot-feed/internal/extract"
	"brainrot-feed/internal/feed"
	"brainrot-feed/internal/scheduler"
)

// Watch repeats independent lookups at an interval and reports each newly seen
// locator, either to the configured notifier or as a JSON line on stdout.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f, err := a.resolveFeed(opts.Feed)
	if err != nil {
		return err
	}
	filters, err := a.buildFilters(opts.MoreThan, opts.Whitelisted)
	if err != nil {
		return err
	}
	if opts.Interval <= 0 {
		opts.Interval = a.Config.Watch.Interval
	}
	if opts.Interval <= 0 {
		return errors.New("watch interval must be greater than zero")
	}

	sched := scheduler.New(scheduler.Options{Interval: opts.Interval, Immediate: true}, a.Logger)
	w := &watcher{
		feed:     f,
		filters:  filters,
		looker:   a.newService(a.newFetcher()),
		notifier: a.newNotifier(),
		out:      os.Stdout,
		logger:   a.Logger.With().Str("component", "watch").Str("feed", f.Name).Logger(),
	}

	a.Logger.Info().Str("feed", f.Name).Dur("interval", opts.Interval).Bool("notify", w.notifier != nil).Msg("starting watch")
	err = sched.Run(ctx, w.tick)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Logger.Info().Msg("watch stopped")
	return nil
}

// watcher remembers only the last reported locator so one sighting is reported once.
type watcher struct {
	feed     feed.Feed
	filters  feed.Filters
	looker   api.Looker
	notifier alerting.Notifier
	out      io.Writer
	logger   zerolog.Logger

	lastLocator string
}

func (w *watcher) tick(ctx context.Context, at time.Time) error {
	rec, err := w.looker.Lookup(ctx, w.feed.Sources, w.filters)
	if err != nil {
		var rej *feed.Rejection
		if errors.As(err, &rej) {
			w.logger.Debug().Time("tick", at).Str("reason", string(rej.Reason)).Msg("nothing found")
			return nil
		}
		return err
	}
	if rec.Locator == w.lastLocator {
		return nil
	}
	if err := w.report(ctx, rec); err != nil {
		return err
	}
	// 只有成功送达后才记住，发送失败时下一轮会重试。
	w.lastLocator = rec.Locator
	return nil
}

func (w *watcher) report(ctx context.Context, rec feed.Record) error {
	if w.notifier == nil {
		enc := json.NewEncoder(w.out)
		enc.SetEscapeHTML(false)
		return enc.Encode(feed.RecordResponse(rec, w.feed.LocatorKey))
	}

	note := alerting.Notification{
		Feed:       w.feed.Name,
		LocatorKey: w.feed.LocatorKey,
		Record:     rec,
		Threshold:  w.filters.Threshold,
		Keyword:    w.filters.Keyword,
	}
	if value, err := extract.ParseAmount(rec.Rate); err == nil {
		note.Value = decimal.NewNullDecimal(value)
	}
	return w.notifier.Notify(ctx, note)
}
