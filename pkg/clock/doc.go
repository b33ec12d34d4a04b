// Package clock provides vector timestamps for tracking causality between
// a fixed set of processes. A vector timestamp holds one logical counter
// per process; comparing two of them tells whether one happened before the
// other, after it, is equal to it or is concurrent with it.
//
// All values are immutable. Every operation returns a new timestamp, so
// timestamps can be shared between goroutines without locking.
package clock
