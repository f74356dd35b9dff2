package spawn

import (
	"context"
	"log/slog"
	"time"
)

// RespawnManager periodically revives dead mobs whose respawn window has
// elapsed. Several nodes may run the loop at once; the registry's revive is
// idempotent so overlapping runs are harmless.
type RespawnManager struct {
	registry *Registry
	interval time.Duration
	stopCh   chan struct{}
}

// NewRespawnManager creates a respawn manager. interval <= 0 defaults to
// one minute.
func NewRespawnManager(registry *Registry, interval time.Duration) *RespawnManager {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RespawnManager{
		registry: registry,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the respawn loop until the context is cancelled or Stop is
// called.
func (m *RespawnManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("respawn manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("respawn manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("respawn manager stopped")
			return nil

		case <-ticker.C:
			count, err := m.registry.ProcessRespawns(ctx)
			if err != nil {
				slog.Error("respawn pass failed", "error", err)
				continue
			}
			if count > 0 {
				slog.Debug("respawn pass completed", "revived", count)
			}
		}
	}
}

// Stop stops the respawn loop.
func (m *RespawnManager) Stop() {
	close(m.stopCh)
}
