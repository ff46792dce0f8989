package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"brainrot-feed/internal/extract"
	"brainrot-feed/internal/feed"
	"brainrot-feed/internal/fetcher"
)

// ErrNoSources is returned when a lookup is given an empty source list.
var ErrNoSources = errors.New("no sources configured")

// Service runs the fetch, extract and filter pipeline across an ordered source list.
type Service struct {
	fetcher fetcher.Fetcher
	logger  zerolog.Logger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs the lookup service.
func New(f fetcher.Fetcher, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		fetcher: f,
		logger:  logger.With().Str("component", "service").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup tries sources strictly in order and returns the first accepted record.
// Sources after the first success are never fetched. When every source is rejected
// the last rejection is returned.
func (s *Service) Lookup(ctx context.Context, sources []feed.Source, filters feed.Filters) (feed.Record, error) {
	if len(sources) == 0 {
		return feed.Record{}, ErrNoSources
	}

	logger := s.logger.With().Str("lookup_id", uuid.NewString()).Logger()

	var last error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return feed.Record{}, err
		}

		rec, err := s.trySource(ctx, src, filters)
		if err == nil {
			logger.Info().
				Str("source", src.Label()).
				Str("brainrot_name", rec.Name).
				Str("money_per_sec", rec.Rate).
				Time("observed_at", rec.ObservedAt).
				Msg("record accepted")
			return rec, nil
		}

		event := logger.Debug().Err(err).Str("source", src.Label())
		var rej *feed.Rejection
		if errors.As(err, &rej) {
			event = event.Str("reason", string(rej.Reason))
			switch rej.Reason {
			case feed.ReasonTransport:
				event = event.Bool("timeout", fetcher.IsTimeout(rej))
			case feed.ReasonStaleOrFuture:
				event = event.Int64("age_seconds", rej.AgeSeconds)
			}
		}
		event.Msg("source rejected")
		last = err
	}
	return feed.Record{}, last
}

func (s *Service) trySource(ctx context.Context, src feed.Source, filters feed.Filters) (feed.Record, error) {
	payload, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return feed.Record{}, attribute(err, src)
	}

	rec, err := extract.Extract(payload, src.Kind, filters, s.now())
	if err != nil {
		return feed.Record{}, attribute(err, src)
	}
	rec.Source = src.Label()
	return rec, nil
}

func attribute(err error, src feed.Source) error {
	var rej *feed.Rejection
	if errors.As(err, &rej) {
		return rej.WithSource(src.Label())
	}
	return &feed.Rejection{Reason: feed.ReasonTransport, Source: src.Label(), Err: err}
}
