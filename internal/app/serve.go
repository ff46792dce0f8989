package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"brainrot-feed/internal/api"
)

// Serve runs the HTTP query endpoint until SIGINT or SIGTERM.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	router := api.NewRouter(api.Options{
		Feeds:          a.feeds,
		Window:         a.Config.Window(),
		RequestTimeout: a.Config.Server.RequestTimeout,
	}, a.newService(a.newFetcher()), a.Logger)

	server := &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", server.Addr).Strs("feeds", a.feedNames()).Msg("starting query server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.Logger.Error().Err(err).Msg("server terminated with error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutdown signal received")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}

	a.Logger.Info().Msg("query server stopped")
	return nil
}
