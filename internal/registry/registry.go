// Package registry holds the in-memory snapshot of known vehicles,
// investors and consignment contracts used for classification and
// schedule generation.
package registry

import (
	"context"
	"fmt"
	"sync"

	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"
)

// EntitySource loads the full entity set from persistence.
type EntitySource interface {
	LoadEntitySet(ctx context.Context) (models.EntitySet, error)
}

// Registry serves an immutable EntitySet snapshot. The snapshot only
// changes on an explicit Reload.
type Registry struct {
	source EntitySource
	logger logging.Logger

	mu   sync.RWMutex
	snap models.EntitySet
}

// New creates an empty registry. Call Reload to populate it.
func New(source EntitySource, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Registry{source: source, logger: logger}
}

// Reload re-reads every entity from the source. On failure the previous
// snapshot is kept.
func (r *Registry) Reload(ctx context.Context) error {
	set, err := r.source.LoadEntitySet(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload entity registry: %w", err)
	}

	r.mu.Lock()
	r.snap = set
	r.mu.Unlock()

	r.logger.Debug("Entity registry reloaded",
		logging.Field{Key: "vehicles", Value: len(set.Vehicles)},
		logging.Field{Key: "investors", Value: len(set.Investors)},
		logging.Field{Key: "consignments", Value: len(set.Consignments)})
	return nil
}

// Snapshot returns the current entity set. Callers must not modify it.
func (r *Registry) Snapshot() models.EntitySet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Contains reports whether ref exists in the current snapshot.
func (r *Registry) Contains(ref models.EntityRef) bool {
	return r.Snapshot().Contains(ref)
}
