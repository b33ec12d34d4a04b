package clock

import "strconv"

// Relation is the causal relationship of one vector timestamp to another.
type Relation int

const (
	// Equal indicates both timestamps hold the same counters.
	Equal Relation = iota
	// Before indicates this timestamp happened before the other.
	Before
	// After indicates this timestamp happened after the other.
	After
	// Concurrent indicates there is no causal relationship.
	Concurrent
)

// Inverse returns the relation as seen from the other timestamp.
func (r Relation) Inverse() Relation {
	switch r {
	case Before:
		return After
	case After:
		return Before
	default:
		return r
	}
}

func (r Relation) String() string {
	switch r {
	case Equal:
		return "Equal"
	case Before:
		return "Before"
	case After:
		return "After"
	case Concurrent:
		return "Concurrent"
	default:
		return "Relation(" + strconv.Itoa(int(r)) + ")"
	}
}
