package retention

import (
	"context"
	"time"

	"invoice-courier/internal/shared/metrics"
	"invoice-courier/internal/shared/telemetry"
	"invoice-courier/internal/storage"
)

// Sweeper deletes stored documents older than the retention window. It runs
// on its own timer, independent of the poll loop, against the folder handle
// established at startup.
type Sweeper struct {
	Gateway storage.Gateway
	Folder  storage.Folder
	Window  time.Duration
}

// Sweep runs one retention pass. Errors are logged, never fatal; a partial
// sweep reports how far it got.
func (s *Sweeper) Sweep(ctx context.Context) {
	deleted, err := s.Gateway.PruneOlderThan(ctx, s.Folder, s.Window)
	if err != nil {
		telemetry.Error("retention.sweep_failed", map[string]any{
			"deleted": deleted,
			"error":   err.Error(),
		})
		metrics.AddDocumentsPruned(deleted)
		return
	}
	telemetry.Info("retention.sweep_done", map[string]any{
		"deleted": deleted,
		"window":  s.Window.String(),
	})
	metrics.AddDocumentsPruned(deleted)
}
