package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"brainrot-feed/internal/feed"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 4 << 20
	errorBodyPreview    = 512
)

// Options parameterise the HTTP fetcher.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// HTTP performs a single GET per source.
type HTTP struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client
}

// New constructs an HTTP fetcher.
func New(opts Options, logger zerolog.Logger) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = "brainrot-feed/1.0"
	}

	return &HTTP{
		opts:   opts,
		logger: logger.With().Str("component", "source_fetcher").Logger(),
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Fetch issues one GET to src.URL and decodes the JSON body. It never retries.
func (h *HTTP) Fetch(ctx context.Context, src feed.Source) (feed.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return feed.Payload{}, &feed.Rejection{Reason: feed.ReasonTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", src.Kind.Accept())
	ua := h.opts.UserAgent
	if src.UserAgent != "" {
		ua = src.UserAgent
	}
	req.Header.Set("User-Agent", ua)
	if src.Auth != "" {
		req.Header.Set("Authorization", src.Auth)
	}
	if src.Referer != "" {
		req.Header.Set("Referer", src.Referer)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return feed.Payload{}, &feed.Rejection{Reason: feed.ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.opts.MaxBodyBytes+1))
	if err != nil {
		return feed.Payload{}, &feed.Rejection{Reason: feed.ReasonTransport, Err: fmt.Errorf("read body: %w", err)}
	}

	h.logger.Debug().
		Str("source", src.Label()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("source polled")

	if resp.StatusCode != http.StatusOK {
		return feed.Payload{}, classifyStatus(resp.StatusCode, body)
	}
	if int64(len(body)) > h.opts.MaxBodyBytes {
		return feed.Payload{}, feed.Reject(feed.ReasonMalformed, "response larger than %d bytes", h.opts.MaxBodyBytes)
	}

	return feed.ParsePayload(body)
}

func classifyStatus(status int, body []byte) *feed.Rejection {
	rej := &feed.Rejection{StatusCode: status}
	switch {
	case status == http.StatusTooManyRequests:
		rej.Reason = feed.ReasonRateLimited
	case status >= 500:
		rej.Reason = feed.ReasonUpstream
	default:
		rej.Reason = feed.ReasonHTTPStatus
	}

	preview := strings.TrimSpace(string(body))
	if len(preview) > errorBodyPreview {
		preview = preview[:errorBodyPreview]
	}
	if preview != "" {
		rej.Detail = fmt.Sprintf("HTTP code: %d: %s", status, preview)
	} else {
		rej.Detail = fmt.Sprintf("HTTP code: %d", status)
	}
	return rej
}

// IsTimeout reports whether a transport rejection was caused by a deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ Fetcher = (*HTTP)(nil)
