package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aurida/helpline/internal/collab/crm"
	"github.com/aurida/helpline/internal/collab/netdiag"
	openaillm "github.com/aurida/helpline/internal/collab/openai"
	"github.com/aurida/helpline/internal/collab/retrieval"
	"github.com/aurida/helpline/internal/config"
	"github.com/aurida/helpline/internal/i18n"
	"github.com/aurida/helpline/internal/logging"
	"github.com/aurida/helpline/internal/runtime"
	"github.com/aurida/helpline/pkg/adapters/memory"
	redisstore "github.com/aurida/helpline/pkg/adapters/redis"
	"github.com/aurida/helpline/pkg/adapters/sqlite"
	"github.com/aurida/helpline/pkg/conversation"
	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  *conversation.Service
	registry *prometheus.Registry

	closer io.Closer
}

// Close releases the checkpoint store, if it holds resources.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// buildApp loads the config named by --config and wires the full service.
func buildApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.Log.Level))

	translator, err := i18n.New(logger)
	if err != nil {
		return nil, err
	}
	crmSvc, err := crm.LoadDefault()
	if err != nil {
		return nil, err
	}
	knowledge, err := retrieval.LoadDefault()
	if err != nil {
		return nil, err
	}

	llm := openaillm.NewClient(openaillm.Config{
		Token:   cfg.LLM.Token,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})

	engine, err := runtime.NewEngine(runtime.Collaborators{
		LLM:         llm,
		CRM:         crmSvc,
		Diagnostics: netdiag.New(),
		Retrieval:   knowledge,
		Translator:  translator,
	},
		runtime.WithLogger(logger),
		runtime.WithMaxRetries(cfg.Conversation.MaxRetries),
	)
	if err != nil {
		return nil, err
	}

	store, closer, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := conversation.NewMetrics(registry)

	service := conversation.New(store, engine,
		conversation.WithLogger(logger),
		conversation.WithMetrics(metrics),
		conversation.WithDefaultLanguage(domain.Language(cfg.Conversation.DefaultLanguage)),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		registry: registry,
		closer:   closer,
	}, nil
}

func buildStore(cfg *config.Config) (ports.CheckpointStore, io.Closer, error) {
	switch cfg.Store.Backend {
	case "memory":
		return memory.NewStore(), nil, nil
	case "sqlite":
		store, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "redis":
		store := redisstore.New(cfg.Store.RedisAddr, "", 0, redisstore.WithTTL(cfg.Store.RedisTTL))
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
