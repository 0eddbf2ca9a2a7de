package scanner

import (
	"fmt"
	"sort"
	"strings"
)

// Folder is a matched directory and its aggregated size.
type Folder struct {
	Path          string `json:"path" yaml:"path"`
	Size          uint64 `json:"size" yaml:"size"`
	ParentProject string `json:"parent_project" yaml:"parent_project"`
}

// Report is the result of one scan. TotalSize always equals the sum of the
// folder sizes.
type Report struct {
	Folders   []Folder `json:"folders" yaml:"folders"`
	TotalSize uint64   `json:"total_size" yaml:"total_size"`
	ScanPath  string   `json:"scan_path" yaml:"scan_path"`
}

// NewReport assembles a report and computes its total.
func NewReport(scanPath string, folders []Folder) *Report {
	if folders == nil {
		folders = []Folder{}
	}
	var total uint64
	for _, f := range folders {
		total += f.Size
	}
	return &Report{Folders: folders, TotalSize: total, ScanPath: scanPath}
}

// Without returns a copy of r that no longer lists the given paths.
func (r *Report) Without(paths []string) *Report {
	if len(paths) == 0 {
		return NewReport(r.ScanPath, append([]Folder(nil), r.Folders...))
	}
	rm := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		rm[p] = struct{}{}
	}
	kept := make([]Folder, 0, len(r.Folders))
	for _, f := range r.Folders {
		if _, ok := rm[f.Path]; ok {
			continue
		}
		kept = append(kept, f)
	}
	return NewReport(r.ScanPath, kept)
}

// AtLeast returns a copy of r keeping only folders of at least minSize bytes.
func (r *Report) AtLeast(minSize uint64) *Report {
	kept := make([]Folder, 0, len(r.Folders))
	for _, f := range r.Folders {
		if f.Size >= minSize {
			kept = append(kept, f)
		}
	}
	return NewReport(r.ScanPath, kept)
}

// SortField selects the key used by SortFolders.
type SortField string

const (
	SortBySize SortField = "size"
	SortByName SortField = "name" // parent project
	SortByPath SortField = "path"
)

// ParseSortField validates a user supplied sort key.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortBySize, SortByName, SortByPath:
		return f, nil
	case "":
		return SortBySize, nil
	default:
		return "", fmt.Errorf("invalid sort field %q: must be one of size, name, path", s)
	}
}

// SortFolders sorts folders in place. Ties keep discovery order.
func SortFolders(folders []Folder, by SortField, desc bool) {
	less := func(a, b Folder) bool {
		switch by {
		case SortByName:
			return a.ParentProject < b.ParentProject
		case SortByPath:
			return a.Path < b.Path
		default:
			return a.Size < b.Size
		}
	}
	sort.SliceStable(folders, func(i, j int) bool {
		if desc {
			return less(folders[j], folders[i])
		}
		return less(folders[i], folders[j])
	})
}
