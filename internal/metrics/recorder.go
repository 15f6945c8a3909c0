// Package metrics records operation outcomes for catalogs, simulations and exports.
package metrics

import (
	"context"
	"time"
)

// Recorder observes the outcome and duration of a named operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Operation names shared by the recorders.
const (
	OpCatalogLoad        = "catalog.load"
	OpCatalogQuery       = "catalog.query"
	OpSimulationComplete = "simulation.complete"
	OpExportRun          = "export.run"
)

// Nop discards every observation.
type Nop struct{}

// Observe implements Recorder.
func (Nop) Observe(context.Context, string, bool, time.Duration) {}

// OrNop returns r, or a Nop recorder when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Since observes the elapsed time from start for operation.
func Since(ctx context.Context, r Recorder, operation string, start time.Time, err error) {
	OrNop(r).Observe(ctx, operation, err == nil, time.Since(start))
}
