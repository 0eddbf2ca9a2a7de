package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"node-modules-cleaner/internal/dirsize"
	"node-modules-cleaner/internal/walk"
)

// UnknownProject is reported when a match has no nameable parent directory.
const UnknownProject = "Unknown"

// Options defines scanning behavior.
type Options struct {
	Marker      string      // directory name to look for; DefaultMarker if empty
	Concurrency int         // matches sized at once; runtime.NumCPU() if <= 0
	Workers     int         // fastwalk workers per sized match; 0 uses the fastwalk default
	MaxDepth    int         // 0 unlimited
	Excludes    []string    // gitignore-style patterns relative to the scan root
	Logger      *zap.Logger // nil disables logging
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
		if o.Concurrency < 1 {
			o.Concurrency = 1
		}
	}
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) sizeOptions() dirsize.Options {
	return dirsize.Options{Workers: o.Workers, Logger: o.Logger}
}

// Find walks root and returns the absolute paths of all matching directories
// in discovery order. Matches are leaves: nothing below a match is reported.
func Find(root string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	abs, err := walk.Root(root, true)
	if err != nil {
		return nil, err
	}

	var found []string
	err = find(abs, opts, func(path string) error {
		found = append(found, path)
		return nil
	})
	return found, err
}

func find(root string, opts Options, emit func(path string) error) error {
	policy := NewPolicy(root, opts)
	return walk.Walk(root, policy.Prune, func(e walk.Entry) error {
		if !policy.Matches(e) {
			return nil
		}
		if err := emit(e.Path); err != nil {
			return err
		}
		return fs.SkipDir
	}, opts.Logger)
}

// Scan finds every match under root, sizes the matches concurrently and
// returns the assembled report. It fails only when root is missing or not a
// directory, or when ctx is cancelled before all matches are sized.
func Scan(ctx context.Context, root string, opts Options) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	abs, err := walk.Root(root, true)
	if err != nil {
		return nil, err
	}
	paths, err := Find(abs, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("discovery finished", zap.String("root", abs), zap.Int("matches", len(paths)))

	folders := make([]Folder, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			folders[i] = newFolder(p, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ScanPath echoes the requested root; folder paths are absolute.
	return NewReport(root, folders), nil
}

// ScanStream performs scanning and streams each Folder on the returned
// channel as soon as it is sized. Discovery and sizing overlap. When done, the
// folder channel is closed and a single error (if any) is sent on errCh,
// which is then closed.
func ScanStream(ctx context.Context, root string, opts Options) (<-chan Folder, <-chan error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out := make(chan Folder)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		opts = opts.withDefaults()

		abs, err := walk.Root(root, true)
		if err != nil {
			errCh <- err
			return
		}

		jobs := make(chan string)
		var wg sync.WaitGroup
		worker := func() {
			defer wg.Done()
			for p := range jobs {
				f := newFolder(p, opts)
				select {
				case <-ctx.Done():
					return
				case out <- f:
				}
			}
		}
		wg.Add(opts.Concurrency)
		for i := 0; i < opts.Concurrency; i++ {
			go worker()
		}

		// feed jobs via walk
		walkErr := find(abs, opts, func(path string) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- path:
				return nil
			}
		})
		close(jobs)
		wg.Wait()

		if walkErr == nil {
			walkErr = ctx.Err()
		}
		if walkErr != nil {
			errCh <- walkErr
		}
	}()
	return out, errCh
}

func newFolder(path string, opts Options) Folder {
	return Folder{
		Path:          path,
		Size:          dirsize.Dir(path, opts.sizeOptions()),
		ParentProject: ParentProject(path),
	}
}

// ParentProject returns the name of the directory containing path, or
// UnknownProject when that directory has no usable name.
func ParentProject(path string) string {
	if path == "" {
		return UnknownProject
	}
	parent := filepath.Dir(filepath.Clean(path))
	if parent == filepath.Clean(path) {
		return UnknownProject
	}
	name := filepath.Base(parent)
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return UnknownProject
	}
	if !utf8.ValidString(name) {
		return UnknownProject
	}
	return name
}
