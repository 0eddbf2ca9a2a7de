package deleter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyPath is recorded for blank entries in the request.
var ErrEmptyPath = errors.New("empty path")

// Outcome is the result of removing one requested path.
type Outcome struct {
	Path    string `json:"path" yaml:"path"`
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Reason  Reason `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type Progress struct {
	Completed int
	Total     int
	Path      string
	Err       error
}

// FS is the filesystem surface used for removal.
type FS interface {
	Lstat(name string) (fs.FileInfo, error)
	RemoveAll(path string) error
}

type osFS struct{}

func (osFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
func (osFS) RemoveAll(path string) error            { return os.RemoveAll(path) }

// Options tunes a Delete call. The zero value removes every path on its own
// goroutine.
type Options struct {
	Concurrency int             // max removals in flight; <= 0 means one per path
	DryRun      bool            // check existence only, remove nothing
	Progress    chan<- Progress // optional, receives a best-effort update per path
	FS          FS              // nil uses the OS filesystem
	Logger      *zap.Logger
}

// Delete removes every path recursively and independently. It returns one
// Outcome per input path, in input order. A failure on one path never stops
// the others and nothing is rolled back. A path that does not exist is a
// failure, so deleting the same path twice fails the second time.
//
// The progress channel is not closed here.
func Delete(ctx context.Context, paths []string, opts Options) []Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.FS == nil {
		opts.FS = osFS{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	total := len(paths)
	outcomes := make([]Outcome, total)
	var completed atomic.Int64

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, p := range paths {
		g.Go(func() error {
			err := remove(ctx, opts, p)
			outcomes[i] = newOutcome(p, err)
			if err != nil {
				log.Debug("removal failed", zap.String("path", p), zap.Error(err))
			}

			n := completed.Add(1)
			if opts.Progress != nil {
				// Non-blocking best-effort send; avoid deadlock if receiver slow
				select {
				case opts.Progress <- Progress{Completed: int(n), Total: total, Path: p, Err: err}:
				default:
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func remove(ctx context.Context, opts Options, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return ErrEmptyPath
	}
	// RemoveAll treats a missing path as success; report it instead.
	if _, err := opts.FS.Lstat(path); err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}
	return opts.FS.RemoveAll(path)
}

func newOutcome(path string, err error) Outcome {
	if err == nil {
		return Outcome{Path: path, Success: true}
	}
	return Outcome{Path: path, Error: err.Error(), Reason: Classify(err)}
}

// Summary folds a batch of outcomes for display.
type Summary struct {
	Deleted  []string
	Failures []Outcome
	Freed    uint64
}

// Summarize splits outcomes into successes and failures. sizes maps a path to
// its known size and feeds Freed; unknown paths count as zero.
func Summarize(outcomes []Outcome, sizes map[string]uint64) Summary {
	var sum Summary
	for _, o := range outcomes {
		if !o.Success {
			sum.Failures = append(sum.Failures, o)
			continue
		}
		sum.Deleted = append(sum.Deleted, o.Path)
		sum.Freed += sizes[o.Path]
	}
	return sum
}
