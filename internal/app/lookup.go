package app

import (
	"context"
	"encoding/json"
	"io"

	"brainrot-feed/internal/feed"
)

// Lookup runs the pipeline once for a feed and writes exactly one JSON body to out.
// Rejections are reported in the body; only invalid input is returned as an error.
func (a *App) Lookup(ctx context.Context, opts LookupOptions, out io.Writer) error {
	resp, err := a.lookupResponse(ctx, opts)
	if err != nil {
		resp = feed.ErrorResponse(err)
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if encErr := enc.Encode(resp); encErr != nil {
		return encErr
	}
	return err
}

func (a *App) lookupResponse(ctx context.Context, opts LookupOptions) (feed.Response, error) {
	f, err := a.resolveFeed(opts.Feed)
	if err != nil {
		return feed.Response{}, err
	}
	filters, err := a.buildFilters(opts.MoreThan, opts.Whitelisted)
	if err != nil {
		return feed.Response{}, err
	}

	rec, err := a.newService(a.newFetcher()).Lookup(ctx, f.Sources, filters)
	if err != nil {
		return feed.ErrorResponse(err), nil
	}
	return feed.RecordResponse(rec, f.LocatorKey), nil
}
