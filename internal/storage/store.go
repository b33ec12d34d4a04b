package storage

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cloudclock/pkg/clock"
)

// ErrRepairSkipped is returned by PutRepair when the stored version is newer
// than or concurrent with the incoming one.
var ErrRepairSkipped = errors.New("storage: repair skipped")

// VersionedValue represents a value with its vector timestamp version.
type VersionedValue struct {
	Value     []byte
	Version   clock.VectorTimestamp
	Deleted   bool       // True if this is a tombstone (deleted)
	ExpiresAt *time.Time // nil if no expiration
}

// IsExpired checks if the value has expired.
func (vv *VersionedValue) IsExpired() bool {
	if vv.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*vv.ExpiresAt)
}

// IsTombstone checks if this is a deletion tombstone.
func (vv *VersionedValue) IsTombstone() bool {
	return vv.Deleted
}

// Store defines the interface for versioned key-value storage.
type Store interface {
	// Get retrieves a value by key. Returns nil if not found or expired.
	Get(key string) *VersionedValue
	// Put stores a value. If ctx is nil the write is a local event, otherwise
	// ctx is the causal context the writer observed and is merged in.
	Put(key string, value []byte, ctx *clock.VectorTimestamp) (clock.VectorTimestamp, error)
	// PutRepair stores a value with the exact version (no increment) for repair.
	// Only overwrites if incoming version happens after or equals the existing
	// one; otherwise returns ErrRepairSkipped.
	PutRepair(key string, value []byte, version clock.VectorTimestamp, deleted bool) error
	// Delete stores a tombstone. Returns the version after deletion.
	Delete(key string, ctx *clock.VectorTimestamp) (clock.VectorTimestamp, error)
}

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of Store owned by a single
// process. It's thread-safe and supports TTL expiration.
type InMemoryStore struct {
	mu         sync.RWMutex
	data       map[string]*VersionedValue
	localIndex int // slot ticked by writes on this store
	width      int // number of processes in every version
	ttl        time.Duration
	logger     *log.Logger
}

// NewInMemoryStore creates a store for process localIndex in a system of
// width processes.
func NewInMemoryStore(localIndex, width int) (*InMemoryStore, error) {
	zero, err := clock.New(width)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	if _, err := zero.Tick(localIndex); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return &InMemoryStore{
		data:       make(map[string]*VersionedValue),
		localIndex: localIndex,
		width:      width,
		logger:     log.Default(),
	}, nil
}

// SetTTL makes subsequent writes expire after d. Zero disables expiration.
func (s *InMemoryStore) SetTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = d
}

// SetLogger replaces the logger used for repair diagnostics.
func (s *InMemoryStore) SetLogger(l *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

// Get retrieves a value by key.
func (s *InMemoryStore) Get(key string) *VersionedValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vv, exists := s.data[key]
	if !exists {
		return nil
	}

	if vv.IsExpired() {
		// Clean up expired entry (best effort, don't block readers)
		go s.deleteExpired(key)
		return nil
	}

	// Values are copied; versions are immutable and shared as-is
	return &VersionedValue{
		Value:     append([]byte(nil), vv.Value...),
		Version:   vv.Version,
		Deleted:   vv.Deleted,
		ExpiresAt: copyTime(vv.ExpiresAt),
	}
}

// Put stores a value and returns its new version.
// The version starts from the stored one (or all zeros) and is either
// ticked for this process or, when ctx is given, merged with ctx.
func (s *InMemoryStore) Put(key string, value []byte, ctx *clock.VectorTimestamp) (clock.VectorTimestamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(key, value, ctx, false)
}

// Delete stores a tombstone for key.
func (s *InMemoryStore) Delete(key string, ctx *clock.VectorTimestamp) (clock.VectorTimestamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store tombstone instead of deleting (for repair)
	return s.write(key, nil, ctx, true)
}

// PutRepair stores a value with the exact version (no increment).
// Only overwrites if incoming version happens after or equals existing.
func (s *InMemoryStore) PutRepair(key string, value []byte, version clock.VectorTimestamp, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version.Len() != s.width {
		return fmt.Errorf("repair of key %s: %w: %d != %d", key, clock.ErrLengthMismatch, version.Len(), s.width)
	}

	if existing, exists := s.data[key]; exists && !existing.IsExpired() {
		rel, err := version.Compare(existing.Version)
		if err != nil {
			return fmt.Errorf("repair of key %s: %w", key, err)
		}
		if rel != clock.After && rel != clock.Equal {
			s.logger.Printf("[storage] repair skipped for key=%s: incoming %v is %v stored %v", key, version, rel, existing.Version)
			return fmt.Errorf("%w: key %s: incoming %v is %v stored %v", ErrRepairSkipped, key, version, rel, existing.Version)
		}
	}

	s.data[key] = s.newValue(value, version, deleted)
	return nil
}

// Keys returns the keys currently held, including tombstones.
func (s *InMemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k, vv := range s.data {
		if !vv.IsExpired() {
			keys = append(keys, k)
		}
	}
	return keys
}

// write must be called with s.mu held.
func (s *InMemoryStore) write(key string, value []byte, ctx *clock.VectorTimestamp, deleted bool) (clock.VectorTimestamp, error) {
	// width was validated by NewInMemoryStore, New cannot fail
	base, _ := clock.New(s.width)
	if existing, exists := s.data[key]; exists && !existing.IsExpired() {
		base = existing.Version
	}

	var (
		version clock.VectorTimestamp
		err     error
	)
	if ctx == nil {
		version, err = base.Tick(s.localIndex)
	} else {
		version, err = base.Receive(s.localIndex, *ctx)
	}
	if err != nil {
		return clock.VectorTimestamp{}, fmt.Errorf("write of key %s: %w", key, err)
	}

	s.data[key] = s.newValue(value, version, deleted)
	return version, nil
}

func (s *InMemoryStore) newValue(value []byte, version clock.VectorTimestamp, deleted bool) *VersionedValue {
	var valueCopy []byte
	if !deleted {
		valueCopy = append([]byte(nil), value...)
	}
	var expiresAt *time.Time
	if s.ttl > 0 {
		t := time.Now().Add(s.ttl)
		expiresAt = &t
	}
	return &VersionedValue{
		Value:     valueCopy,
		Version:   version,
		Deleted:   deleted,
		ExpiresAt: expiresAt,
	}
}

// deleteExpired removes an expired key (called asynchronously).
func (s *InMemoryStore) deleteExpired(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vv, exists := s.data[key]; exists && vv.IsExpired() {
		delete(s.data, key)
	}
}

// copyTime creates a copy of a time pointer.
func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copy := *t
	return &copy
}
