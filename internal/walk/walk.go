package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// ErrInvalidRoot is returned when a walk root does not exist or has the wrong type.
var ErrInvalidRoot = errors.New("invalid root")

// Kind tags a directory entry as file, directory or anything else.
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDir
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	default:
		return "other"
	}
}

// Entry is a single filesystem object reached by a walk. It is only valid
// inside the callback that received it.
type Entry struct {
	Path   string
	Parent string
	Name   string
	Kind   Kind
	Depth  int // 0 for the root

	d fs.DirEntry
}

// Len returns the byte length of a file entry. ok is false for non-files and
// when the metadata lookup fails.
func (e Entry) Len() (n uint64, ok bool) {
	if e.Kind != KindFile || e.d == nil {
		return 0, false
	}
	info, err := e.d.Info()
	if err != nil {
		return 0, false
	}
	return uint64(info.Size()), true
}

// IsRoot reports whether the entry is the walk root.
func (e Entry) IsRoot() bool { return e.Depth == 0 }

// PruneFunc reports whether an entry must be excluded. Excluded directories
// are not descended into.
type PruneFunc func(e Entry) bool

// VisitFunc is called for every entry that survives pruning. Returning
// fs.SkipDir from a directory turns it into a leaf; any other error aborts.
type VisitFunc func(e Entry) error

// Walk traverses root depth-first in lexical order. Entries that cannot be
// read are skipped; one bad subtree never stops the walk.
func Walk(root string, prune PruneFunc, visit VisitFunc, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	root = filepath.Clean(root)
	rootDepth := depthOf(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		e := newEntry(path, d, depthOf(path)-rootDepth)
		if prune != nil && prune(e) {
			if e.Kind == KindDir {
				return filepath.SkipDir
			}
			return nil
		}
		if visit == nil {
			return nil
		}
		return visit(e)
	})
}

// Parallel traverses root with a pool of workers and calls visit concurrently
// from many goroutines. There is no pruning and no ordering. Entries that
// cannot be read are skipped.
func Parallel(root string, workers int, visit VisitFunc, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	root = filepath.Clean(root)
	rootDepth := depthOf(root)

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: workers,
	}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err := visit(newEntry(path, d, depthOf(path)-rootDepth)); err != nil {
			if errors.Is(err, filepath.SkipDir) {
				return err
			}
			log.Debug("visit failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		log.Debug("parallel walk ended early", zap.String("root", root), zap.Error(err))
	}
}

// Root validates a walk root and returns it absolute and cleaned. A root that
// is a symlink is replaced by its target so the walk descends into it.
func Root(path string, wantDir bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: path %q does not exist", ErrInvalidRoot, path)
		}
		return "", fmt.Errorf("%w: accessing path %q: %v", ErrInvalidRoot, path, err)
	}
	if wantDir && !info.IsDir() {
		return "", fmt.Errorf("%w: path %q is not a directory", ErrInvalidRoot, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	if linfo, err := os.Lstat(abs); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved, nil
		}
	}
	return abs, nil
}

func newEntry(path string, d fs.DirEntry, depth int) Entry {
	e := Entry{
		Path:   path,
		Parent: filepath.Dir(path),
		Name:   filepath.Base(path),
		Depth:  depth,
		d:      d,
	}
	switch {
	case d.IsDir():
		e.Kind = KindDir
	case d.Type().IsRegular():
		e.Kind = KindFile
	default:
		e.Kind = KindOther
	}
	return e
}

func depthOf(p string) int {
	clean := filepath.Clean(p)
	depth := 0
	for {
		parent := filepath.Dir(clean)
		if parent == clean {
			break
		}
		depth++
		clean = parent
	}
	return depth
}
