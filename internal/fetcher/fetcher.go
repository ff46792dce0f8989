package fetcher

import (
	"context"

	"brainrot-feed/internal/feed"
)

// Fetcher retrieves the raw payload of one source. Failures are returned as *feed.Rejection.
type Fetcher interface {
	Fetch(ctx context.Context, src feed.Source) (feed.Payload, error)
}
