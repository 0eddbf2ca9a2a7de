// Package walk provides the directory-entry iteration used by discovery and
// sizing.
//
// Walk is sequential and supports pruning; Parallel fans out over a worker
// pool via fastwalk and visits every reachable entry. Both treat unreadable
// entries as absent instead of failing the whole traversal.
package walk
