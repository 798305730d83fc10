package container

import (
	"context"
	"fmt"
	"time"

	"corrlab/adapters/rng"
	"corrlab/adapters/stats/engine"
	"corrlab/adapters/synth"
	"corrlab/domain/core"
	"corrlab/internal"
	"corrlab/internal/api"
	"corrlab/internal/config"
	"corrlab/internal/explorer"
	"corrlab/internal/render"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Core components
	Explorer *explorer.Explorer
	Renderer *render.Renderer
	SSEHub   *api.SSEHub

	subscription core.SubscriptionID
}

// New creates a new dependency injection container and wires the explorer
// to the event hub
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.DefaultLogger
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info("CORRLAB_SEED not set, seeding from clock: %d", seed)
	}
	normals := rng.NewStream("explorer", seed)

	exp, err := explorer.New(cfg.Explorer, synth.NewSynthesizer(normals),
		explorer.WithLogger(logger.WithComponent("explorer")),
		explorer.WithStatsEngine(engine.NewStatsEngine()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create explorer: %w", err)
	}
	c.Explorer = exp

	c.Renderer = render.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.MaxRenders, logger)
	c.SSEHub = api.NewSSEHub(logger)
	c.subscription = exp.Subscribe(c.SSEHub.Publish)

	logger.Info("container initialized (seed=%d)", seed)
	return c, nil
}

// Shutdown detaches the hub from the explorer and closes client streams
func (c *Container) Shutdown(_ context.Context) error {
	c.Logger.Info("shutting down container")
	if c.Explorer != nil && c.subscription != "" {
		c.Explorer.Unsubscribe(c.subscription)
	}
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	return nil
}
