package repair

import (
	"fmt"

	"cloudclock/pkg/clock"
)

// VersionedValue represents a value with its vector timestamp version.
// This is used for reconciliation and mirrors storage.VersionedValue.
type VersionedValue struct {
	Value   []byte
	Version clock.VectorTimestamp
	Deleted bool
}

// ReconcileResult represents the result of reconciling multiple versions.
type ReconcileResult struct {
	// Winners is the maximal set of non-dominated versions (siblings).
	// If len(Winners) == 1, there's a single winner.
	// If len(Winners) > 1, there are concurrent versions (conflicts).
	Winners []VersionedValue

	// Stale maps replica identifier to the stale version it returned.
	// A version is stale if another version happens after it.
	Stale map[string]VersionedValue
}

// Reconcile computes the maximal set of versions from the given list.
// replicaIDs should correspond 1:1 with values; if they don't, positional
// IDs ("replica-0", ...) are used. All versions must have the same length.
func Reconcile(values []VersionedValue, replicaIDs []string) (ReconcileResult, error) {
	result := ReconcileResult{
		Winners: []VersionedValue{},
		Stale:   make(map[string]VersionedValue),
	}
	if len(values) == 0 {
		return result, nil
	}

	if len(replicaIDs) != len(values) {
		replicaIDs = make([]string, len(values))
		for i := range replicaIDs {
			replicaIDs[i] = fmt.Sprintf("replica-%d", i)
		}
	}

	for i, v1 := range values {
		isDominated := false

		for j, v2 := range values {
			if i == j {
				continue
			}
			rel, err := v1.Version.Compare(v2.Version)
			if err != nil {
				return ReconcileResult{}, fmt.Errorf("compare %s with %s: %w", replicaIDs[i], replicaIDs[j], err)
			}
			if rel == clock.Before {
				isDominated = true
				break
			}
		}

		if isDominated {
			result.Stale[replicaIDs[i]] = v1
			continue
		}

		// Equal versions collapse into one winner
		isDuplicate := false
		for _, winner := range result.Winners {
			if v1.Version.Equal(winner.Version) {
				isDuplicate = true
				break
			}
		}
		if !isDuplicate {
			result.Winners = append(result.Winners, v1)
		}
	}

	return result, nil
}

// HasConflict returns true if there are multiple winners (conflicts).
func (r *ReconcileResult) HasConflict() bool {
	return len(r.Winners) > 1
}

// IsResolved returns true if there's exactly one winner (no conflict).
func (r *ReconcileResult) IsResolved() bool {
	return len(r.Winners) == 1
}

// IsNotFound returns true if there are no winners.
func (r *ReconcileResult) IsNotFound() bool {
	return len(r.Winners) == 0
}
