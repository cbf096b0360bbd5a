package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tbxark/formpilot/agent"
	"github.com/tbxark/formpilot/config"
	"github.com/tbxark/formpilot/server"
	"golang.org/x/sync/errgroup"
)

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	h := server.NewHandler(a.engine, a.docs, server.Info{
		Model:                cfg.Completion.Model,
		DocumentsConfigured:  !cfg.DemoDocuments(),
		CompletionConfigured: cfg.CompletionEnabled(),
	}, cfg.MaxUploadSize)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(h, []string{"*"}),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "port", cfg.Port, "model", cfg.Completion.Model, "store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return agent.RunSweeper(ctx, a.store, cfg.SessionTTL, 0)
	})
	return g.Wait()
}
