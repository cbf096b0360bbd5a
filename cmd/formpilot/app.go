package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/redis/go-redis/v9"
	"github.com/tbxark/formpilot/agent"
	"github.com/tbxark/formpilot/config"
	"github.com/tbxark/formpilot/dialogue"
	"github.com/tbxark/formpilot/docs"
)

type app struct {
	engine *agent.Engine
	store  agent.SessionStore
	docs   docs.Service
	close  func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, err
	}
	var documents docs.Service
	if cfg.DemoDocuments() {
		slog.Warn("PDF_CO_API_KEY not configured, using demo documents")
		documents = docs.NewDemo()
	} else {
		documents = docs.NewPDFCo(cfg.PDFCoAPIKey, cfg.PDFCoBaseURL)
	}
	return &app{
		engine: agent.NewEngine(store, agent.WithGenerator(generator)),
		store:  store,
		docs:   documents,
		close:  closeStore,
	}, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (agent.SessionStore, func(), error) {
	if cfg.SessionStore != config.StoreRedis {
		return agent.NewMemorySessionStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}
	slog.Info("using redis session store", "addr", cfg.Redis.Addr, "ttl", cfg.SessionTTL)
	store := agent.NewCacheSessionStore(agent.NewRedisCache[*agent.Session](client, cfg.SessionTTL), "formpilot:session")
	return store, func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close redis client", "err", err)
		}
	}, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) (dialogue.Generator, error) {
	if !cfg.CompletionEnabled() {
		slog.Warn("COMETAPI_KEY not configured, using local dialogue only")
		return &dialogue.LocalGenerator{}, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.Completion.APIKey,
		Model:   cfg.Completion.Model,
		BaseURL: cfg.Completion.BaseURL,
		Timeout: cfg.Completion.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return dialogue.NewDefaultGenerator(dialogue.NewModelGenerator(cm), cfg.Completion.Timeout), nil
}
