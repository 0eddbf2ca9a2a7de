package scanner

import (
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"node-modules-cleaner/internal/walk"
)

// DefaultMarker is the directory name looked for when none is configured.
const DefaultMarker = "node_modules"

// Policy decides which entries the discovery walk may descend into and which
// directories count as matches.
type Policy struct {
	Marker   string
	MaxDepth int // 0 unlimited
	Ignore   gitignore.IgnoreMatcher
}

// NewPolicy builds a policy for root. Excludes are gitignore-style patterns
// evaluated relative to root.
func NewPolicy(root string, opts Options) Policy {
	p := Policy{
		Marker:   opts.Marker,
		MaxDepth: opts.MaxDepth,
	}
	if p.Marker == "" {
		p.Marker = DefaultMarker
	}
	if len(opts.Excludes) > 0 {
		p.Ignore = gitignore.NewGitIgnoreFromReader(root, strings.NewReader(strings.Join(opts.Excludes, "\n")))
	}
	return p
}

// Prune reports whether e and its subtree are excluded from discovery.
func (p Policy) Prune(e walk.Entry) bool {
	// everything below a match belongs to that match
	if filepath.Base(e.Parent) == p.Marker {
		return true
	}
	if !e.IsRoot() && strings.HasPrefix(e.Name, ".") {
		return true
	}
	if p.MaxDepth > 0 && e.Depth > p.MaxDepth {
		return true
	}
	if p.Ignore != nil && !e.IsRoot() && p.Ignore.Match(e.Path, e.Kind == walk.KindDir) {
		return true
	}
	return false
}

// Matches reports whether e is a directory named exactly like the marker.
func (p Policy) Matches(e walk.Entry) bool {
	return e.Kind == walk.KindDir && e.Name == p.Marker
}
