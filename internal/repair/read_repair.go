package repair

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloudclock/internal/storage"
	"cloudclock/pkg/clock"
)

// ReadRepairer converges stale replicas by writing winning versions back to them.
type ReadRepairer struct {
	// storeProvider returns the store holding a given replica
	storeProvider func(replicaID string) (storage.Store, error)
	timeout       time.Duration
}

// NewReadRepairer creates a new read repairer.
func NewReadRepairer(storeProvider func(replicaID string) (storage.Store, error), timeout time.Duration) *ReadRepairer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ReadRepairer{
		storeProvider: storeProvider,
		timeout:       timeout,
	}
}

// Repair asynchronously repairs stale replicas with winning versions.
// This is fire-and-forget: it logs errors but does not block or retry.
func (r *ReadRepairer) Repair(key string, result ReconcileResult) {
	if len(result.Stale) == 0 {
		return
	}

	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Read repair panic for key %s: %v", key, err)
			}
		}()

		repairCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		r.RepairNow(repairCtx, key, result)
	}()
}

// RepairNow repairs stale replicas synchronously and returns how many were
// repaired and how many failed.
func (r *ReadRepairer) RepairNow(ctx context.Context, key string, result ReconcileResult) (repaired, failed int) {
	if len(result.Stale) == 0 {
		return 0, 0
	}

	log.Printf("Read repair triggered for key=%s: %d stale replicas, %d winners", key, len(result.Stale), len(result.Winners))

	for replicaID, staleValue := range result.Stale {
		if err := ctx.Err(); err != nil {
			log.Printf("Read repair for key=%s stopped: %v", key, err)
			failed += len(result.Stale) - repaired - failed
			break
		}
		if err := r.repairReplica(replicaID, key, result.Winners, staleValue); err != nil {
			log.Printf("Read repair failed for replica %s (key=%s): %v", replicaID, key, err)
			failed++
		} else {
			repaired++
		}
	}

	log.Printf("Read repair completed for key=%s: %d repaired, %d failed", key, repaired, failed)
	return repaired, failed
}

// repairReplica writes to a single stale replica a winner that happens
// after the version it returned. Stores keep one version per key, so the
// first such winner is written.
func (r *ReadRepairer) repairReplica(replicaID, key string, winners []VersionedValue, stale VersionedValue) error {
	winner, err := dominatingWinner(winners, stale)
	if err != nil {
		return err
	}

	store, err := r.storeProvider(replicaID)
	if err != nil {
		return fmt.Errorf("failed to get store: %w", err)
	}

	if err := store.PutRepair(key, winner.Value, winner.Version, winner.Deleted); err != nil {
		return fmt.Errorf("repair put failed: %w", err)
	}
	return nil
}

// dominatingWinner returns the first winner that happens after stale.
func dominatingWinner(winners []VersionedValue, stale VersionedValue) (VersionedValue, error) {
	if len(winners) == 0 {
		return VersionedValue{}, fmt.Errorf("no winners to repair with")
	}
	for _, w := range winners {
		rel, err := w.Version.Compare(stale.Version)
		if err != nil {
			return VersionedValue{}, err
		}
		if rel == clock.After {
			return w, nil
		}
	}
	return VersionedValue{}, fmt.Errorf("no winner happens after stale version %v", stale.Version)
}
