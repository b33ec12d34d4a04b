package clock

import (
	"math"
	"strconv"
)

// LogicalTimestamp is a single process's event counter. The zero value is
// the initial counter.
type LogicalTimestamp struct {
	value uint64
}

// NewLogicalTimestamp returns a counter holding v.
func NewLogicalTimestamp(v uint64) LogicalTimestamp {
	return LogicalTimestamp{value: v}
}

// Next returns the counter that follows lt. It panics if lt is already at
// the maximum value; use IsMax to check first.
func (lt LogicalTimestamp) Next() LogicalTimestamp {
	if lt.IsMax() {
		panic("clock: logical timestamp overflow")
	}
	return LogicalTimestamp{value: lt.value + 1}
}

// IsMax reports whether lt can no longer be advanced.
func (lt LogicalTimestamp) IsMax() bool {
	return lt.value == math.MaxUint64
}

// IsBefore reports whether lt is strictly less than other.
func (lt LogicalTimestamp) IsBefore(other LogicalTimestamp) bool {
	return lt.value < other.value
}

// IsAfter reports whether lt is strictly greater than other.
func (lt LogicalTimestamp) IsAfter(other LogicalTimestamp) bool {
	return lt.value > other.value
}

// Value returns the raw counter.
func (lt LogicalTimestamp) Value() uint64 {
	return lt.value
}

func (lt LogicalTimestamp) String() string {
	return strconv.FormatUint(lt.value, 10)
}
