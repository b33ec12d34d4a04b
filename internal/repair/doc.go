// Package repair provides conflict reconciliation logic for resolving
// concurrent versions using vector timestamps. It computes the maximal set
// of winning versions and identifies stale replicas for read repair.
package repair
