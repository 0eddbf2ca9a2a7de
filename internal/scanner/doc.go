// Package scanner finds marker directories (node_modules by default) under a
// root and reports their sizes.
//
// Discovery is a single pruned walk: hidden entries are skipped, and a match
// is never descended into, so nested markers are counted once as part of
// their outermost match. Each match is then sized concurrently.
package scanner
