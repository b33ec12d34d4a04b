// Package config loads the static process table that assigns each process
// a stable slot in [0, N) of every vector timestamp.
package config
