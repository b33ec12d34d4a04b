// Package storage provides an in-memory key-value store whose values are
// versioned with vector timestamps. Local writes tick the owning process's
// slot; writes carrying a causal context merge it in, so concurrent
// versions can later be detected and reconciled.
package storage
