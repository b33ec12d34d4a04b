package clock

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

var (
	// ErrInvalidLength is returned when a vector is built with a negative length.
	ErrInvalidLength = errors.New("clock: invalid vector length")
	// ErrIndexOutOfRange is returned when a local index is outside [0, Len()).
	ErrIndexOutOfRange = errors.New("clock: index out of range")
	// ErrLengthMismatch is returned when two vectors of different lengths are
	// compared or merged.
	ErrLengthMismatch = errors.New("clock: vector lengths do not match")
	// ErrCounterOverflow is returned when the local slot is already at its
	// maximum value and cannot advance.
	ErrCounterOverflow = errors.New("clock: counter overflow")
)

// VectorTimestamp is a fixed-length vector of logical timestamps, one per
// process. Slot i is owned by process i. The zero value is a vector of
// length 0.
type VectorTimestamp struct {
	slots []LogicalTimestamp
}

// New creates a vector of length zeroed counters.
func New(length int) (VectorTimestamp, error) {
	if length < 0 {
		return VectorTimestamp{}, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	return VectorTimestamp{slots: make([]LogicalTimestamp, length)}, nil
}

// FromSlots creates a vector holding a copy of slots.
func FromSlots(slots []LogicalTimestamp) VectorTimestamp {
	return VectorTimestamp{slots: append([]LogicalTimestamp(nil), slots...)}
}

// FromValues creates a vector from raw counter values.
func FromValues(values ...uint64) VectorTimestamp {
	slots := make([]LogicalTimestamp, len(values))
	for i, v := range values {
		slots[i] = LogicalTimestamp{value: v}
	}
	return VectorTimestamp{slots: slots}
}

// Len returns the number of slots.
func (vt VectorTimestamp) Len() int {
	return len(vt.slots)
}

// At returns the counter in slot i. It panics if i is out of range.
func (vt VectorTimestamp) At(i int) LogicalTimestamp {
	return vt.slots[i]
}

// Values returns a copy of the raw counter values.
func (vt VectorTimestamp) Values() []uint64 {
	values := make([]uint64, len(vt.slots))
	for i, s := range vt.slots {
		values[i] = s.value
	}
	return values
}

// Tick returns the timestamp of a local event on process localIndex: a copy
// of vt with that slot advanced by one. A slot at its maximum value yields
// ErrCounterOverflow.
func (vt VectorTimestamp) Tick(localIndex int) (VectorTimestamp, error) {
	if err := vt.checkLocalSlot(localIndex); err != nil {
		return VectorTimestamp{}, err
	}

	next := vt.copySlots()
	next[localIndex] = next[localIndex].Next()
	return VectorTimestamp{slots: next}, nil
}

// Receive returns the timestamp of process localIndex receiving a message
// stamped with happensBefore. The local slot is advanced by one and every
// other slot takes the larger of the two values.
func (vt VectorTimestamp) Receive(localIndex int, happensBefore VectorTimestamp) (VectorTimestamp, error) {
	if err := vt.checkLocalSlot(localIndex); err != nil {
		return VectorTimestamp{}, err
	}
	if err := vt.checkLength(happensBefore); err != nil {
		return VectorTimestamp{}, err
	}

	next := vt.copySlots()
	next[localIndex] = next[localIndex].Next()
	for i := range next {
		if i != localIndex && next[i].IsBefore(happensBefore.slots[i]) {
			next[i] = happensBefore.slots[i]
		}
	}
	return VectorTimestamp{slots: next}, nil
}

// Compare returns the causal relation of vt to that.
//
// Slots are scanned once. The first slot where vt is behind moves the
// result to Before, the first where it is ahead moves it to After; evidence
// in the opposite direction afterwards means the vectors are Concurrent and
// the scan stops there.
func (vt VectorTimestamp) Compare(that VectorTimestamp) (Relation, error) {
	if err := vt.checkLength(that); err != nil {
		return Equal, err
	}

	relation := Equal
	for i, s := range vt.slots {
		if s.IsBefore(that.slots[i]) {
			if relation == After {
				return Concurrent, nil
			}
			relation = Before
		} else if s.IsAfter(that.slots[i]) {
			if relation == Before {
				return Concurrent, nil
			}
			relation = After
		}
	}
	return relation, nil
}

// HappensBefore reports whether vt causally precedes that. False means the
// timestamps are equal, concurrent, or vt happened after that.
func (vt VectorTimestamp) HappensBefore(that VectorTimestamp) (bool, error) {
	r, err := vt.Compare(that)
	return r == Before && err == nil, err
}

// HappensAfter reports whether vt causally follows that.
func (vt VectorTimestamp) HappensAfter(that VectorTimestamp) (bool, error) {
	r, err := vt.Compare(that)
	return r == After && err == nil, err
}

// IsConcurrent reports whether vt and that are causally unrelated. Equal
// timestamps are not concurrent.
func (vt VectorTimestamp) IsConcurrent(that VectorTimestamp) (bool, error) {
	r, err := vt.Compare(that)
	return r == Concurrent && err == nil, err
}

// Equal reports whether both vectors hold the same counters. Vectors of
// different lengths are never equal.
func (vt VectorTimestamp) Equal(other VectorTimestamp) bool {
	if len(vt.slots) != len(other.slots) {
		return false
	}
	for i, s := range vt.slots {
		if s != other.slots[i] {
			return false
		}
	}
	return true
}

// Hash returns a hash of the counters. Equal vectors hash identically.
func (vt VectorTimestamp) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(vt.slots)))
	h.Write(buf[:])
	for _, s := range vt.slots {
		binary.BigEndian.PutUint64(buf[:], s.value)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// String returns the counters as "[v0 v1 ...]".
func (vt VectorTimestamp) String() string {
	parts := make([]string, len(vt.slots))
	for i, s := range vt.slots {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (vt VectorTimestamp) checkLocalSlot(i int) error {
	if i < 0 || i >= len(vt.slots) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(vt.slots))
	}
	if vt.slots[i].IsMax() {
		return fmt.Errorf("%w: slot %d", ErrCounterOverflow, i)
	}
	return nil
}

func (vt VectorTimestamp) checkLength(other VectorTimestamp) error {
	if len(vt.slots) != len(other.slots) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(vt.slots), len(other.slots))
	}
	return nil
}

func (vt VectorTimestamp) copySlots() []LogicalTimestamp {
	return append(make([]LogicalTimestamp, 0, len(vt.slots)), vt.slots...)
}
