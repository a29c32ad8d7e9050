// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - API mode: HTTP server for the admin registry and the verify endpoint
//   - Bot mode: Admin Telegram bot for operator commands
//
// Each mode can be run independently or combined based on deployment needs.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pulsescalp/channel-gate/internal/gateapi"
	"github.com/pulsescalp/channel-gate/internal/platform/config"
	"github.com/pulsescalp/channel-gate/internal/platform/observability"
	"github.com/pulsescalp/channel-gate/internal/registry"
	db "github.com/pulsescalp/channel-gate/internal/storage"
	"github.com/pulsescalp/channel-gate/internal/telegrambot"
	"github.com/pulsescalp/channel-gate/internal/verifier"
)

const errBotInit = "bot initialization failed: %w"

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	store    *db.Store
	registry *registry.Registry
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, store *db.Store, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		store:    store,
		registry: registry.New(store, logger),
		logger:   logger,
	}
}

// StartHealthServer runs the health/readiness/metrics endpoint.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.store, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunAPI serves the gate HTTP API.
func (a *App) RunAPI(ctx context.Context) error {
	ver, err := a.newVerifier()
	if err != nil {
		return err
	}

	return gateapi.NewServer(a.registry, ver, a.cfg.APIPort, a.logger).Start(ctx)
}

// RunBot runs the admin Telegram bot.
func (a *App) RunBot(ctx context.Context) error {
	api, err := verifier.NewTelegramAPI(a.cfg.BotToken, a.cfg.LookupTimeout)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	ver := verifier.New(a.cfg, a.store, api, a.logger)
	bot := telegrambot.New(a.cfg, a.registry, ver, api, a.logger)

	return bot.Run(ctx)
}

// RunAll runs the API server and the admin bot in one process.
func (a *App) RunAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.RunAPI(ctx) })
	g.Go(func() error { return a.RunBot(ctx) })

	return g.Wait()
}

func (a *App) newVerifier() (*verifier.Verifier, error) {
	api, err := verifier.NewTelegramAPI(a.cfg.BotToken, a.cfg.LookupTimeout)
	if err != nil {
		return nil, fmt.Errorf(errBotInit, err)
	}

	return verifier.New(a.cfg, a.store, api, a.logger), nil
}
