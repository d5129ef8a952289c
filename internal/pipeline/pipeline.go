package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/smartstock/smartstock/config"
	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/models"
)

// Sweeper runs one alert evaluation pass over the inventory
type Sweeper interface {
	Sweep(ctx context.Context) ([]models.AlertEvent, error)
}

// Pipeline drives the periodic alert sweep. The semaphore keeps an
// operator-triggered manual sweep from overlapping the scheduled one;
// the limiter spaces runs out when intervals are configured very short.
type Pipeline struct {
	sweeper Sweeper
	cfg     config.PipelineConfig
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	mu      sync.RWMutex
	running bool
}

// New creates a new pipeline instance
func New(sweeper Sweeper, cfg config.PipelineConfig) *Pipeline {
	p := &Pipeline{
		sweeper: sweeper,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}

	logger.Info("Sweep pipeline initialized",
		"interval", cfg.SweepInterval,
		"rate_limit", cfg.RateLimit,
		"max_concurrent", cfg.MaxConcurrent,
	)

	return p
}

// Run starts the sweep loop and runs until the context is cancelled
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pipeline already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	logger.Info("Starting sweep pipeline")

	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()

	// Initial immediate run
	if _, err := p.RunOnce(ctx); err != nil {
		logger.Error("Initial sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Sweep pipeline stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil {
				logger.Error("Sweep failed", "error", err)
			}
		}
	}
}

// RunOnce executes a single sweep, subject to the concurrency cap and
// the rate limiter. Manual and scheduled runs go through the same path.
func (p *Pipeline) RunOnce(ctx context.Context) ([]models.AlertEvent, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire semaphore: %w", err)
	}
	defer p.sem.Release(1)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	events, err := p.sweeper.Sweep(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	logger.Debug("Sweep run completed",
		"events", len(events),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return events, nil
}

// IsRunning returns whether the pipeline is currently running
func (p *Pipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}
