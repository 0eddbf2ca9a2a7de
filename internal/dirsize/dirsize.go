// Package dirsize sums the bytes stored under a directory.
package dirsize

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"node-modules-cleaner/internal/walk"
)

// Options tunes a size computation.
type Options struct {
	Workers int // fastwalk workers per call; 0 uses the fastwalk default
	Logger  *zap.Logger
}

// Dir returns the total byte length of every regular file under path,
// including hidden files and nested marker directories. Unreadable entries
// are skipped, so Dir never fails; an empty or unreadable tree yields 0.
// A regular file path yields its own length.
func Dir(path string, opts Options) uint64 {
	if info, err := os.Lstat(path); err == nil && info.Mode().IsRegular() {
		return uint64(info.Size())
	}

	var total atomic.Uint64
	walk.Parallel(path, opts.Workers, func(e walk.Entry) error {
		if n, ok := e.Len(); ok {
			total.Add(n)
		}
		return nil
	}, opts.Logger)

	return total.Load()
}

// SizeOf validates that path exists and returns Dir(path).
func SizeOf(path string, opts Options) (uint64, error) {
	root, err := walk.Root(path, false)
	if err != nil {
		return 0, err
	}
	return Dir(root, opts), nil
}
