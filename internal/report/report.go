// Package report renders scan reports and removal outcomes for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/scanner"
)

// Format represents the output format type
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q: must be one of %v", s, Formats)
}

// TabSpacing is the number of spaces between tabwriter columns.
const TabSpacing = 2

// Reporter writes results in one format.
type Reporter struct {
	writer io.Writer
	format Format
}

// New creates a new Reporter
func New(writer io.Writer, format Format) *Reporter {
	return &Reporter{writer: writer, format: format}
}

// Scan writes a scan report.
func (r *Reporter) Scan(rep *scanner.Report) error {
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(rep)
	case FormatYAML:
		return r.encodeYAML(rep)
	case FormatTable:
		return r.scanTable(rep)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// Removal writes the outcomes of a delete call.
func (r *Reporter) Removal(outcomes []deleter.Outcome) error {
	if outcomes == nil {
		outcomes = []deleter.Outcome{}
	}
	switch r.format {
	case FormatJSON:
		return r.encodeJSON(outcomes)
	case FormatYAML:
		return r.encodeYAML(outcomes)
	case FormatTable:
		return r.removalTable(outcomes)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// Size writes the size of a single path.
func (r *Reporter) Size(path string, size uint64) error {
	payload := struct {
		Path string `json:"path" yaml:"path"`
		Size uint64 `json:"size" yaml:"size"`
	}{Path: path, Size: size}

	switch r.format {
	case FormatJSON:
		return r.encodeJSON(payload)
	case FormatYAML:
		return r.encodeYAML(payload)
	case FormatTable:
		_, err := fmt.Fprintf(r.writer, "%s\t%s (%d bytes)\n", path, humanize.IBytes(size), size)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) encodeJSON(v any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func (r *Reporter) encodeYAML(v any) error {
	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}
	return enc.Close()
}

func (r *Reporter) scanTable(rep *scanner.Report) error {
	if len(rep.Folders) == 0 {
		_, err := fmt.Fprintf(r.writer, "No matching folders found in %s\n", rep.ScanPath)
		return err
	}

	w := tabwriter.NewWriter(r.writer, 0, 4, TabSpacing, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tSIZE\tPATH")
	for _, f := range rep.Folders {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.ParentProject, humanize.IBytes(f.Size), f.Path)
	}
	fmt.Fprintln(w, "\t\t")
	fmt.Fprintf(w, "Found:\t%d\t\n", len(rep.Folders))
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\t\n", humanize.IBytes(rep.TotalSize), rep.TotalSize)
	fmt.Fprintf(w, "Root:\t%s\t\n", rep.ScanPath)
	return w.Flush()
}

func (r *Reporter) removalTable(outcomes []deleter.Outcome) error {
	w := tabwriter.NewWriter(r.writer, 0, 4, TabSpacing, ' ', 0)
	fmt.Fprintln(w, "STATUS\tPATH\tERROR")
	failed := 0
	for _, o := range outcomes {
		if o.Success {
			fmt.Fprintf(w, "deleted\t%s\t\n", o.Path)
			continue
		}
		failed++
		fmt.Fprintf(w, "failed\t%s\t%s\n", o.Path, o.Error)
	}
	fmt.Fprintf(w, "\nDeleted %d of %d", len(outcomes)-failed, len(outcomes))
	if failed > 0 {
		fmt.Fprintf(w, ", %d failed", failed)
	}
	fmt.Fprintln(w)
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(r.writer, FailureSummary(outcomes))
	return err
}

// FailureSummary groups failed outcomes by reason with a hint per group. It
// returns "" when nothing failed.
func FailureSummary(outcomes []deleter.Outcome) string {
	grouped := deleter.GroupFailures(outcomes)
	if len(grouped) == 0 {
		return ""
	}
	reasons := make([]deleter.Reason, 0, len(grouped))
	for reason := range grouped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	var b strings.Builder
	b.WriteString("\nIssues encountered:\n")
	for _, reason := range reasons {
		fmt.Fprintf(&b, "  - %s: %d\n", reason, len(grouped[reason]))
		if hint := reason.Hint(); hint != "" {
			fmt.Fprintf(&b, "    tip: %s\n", hint)
		}
	}
	return b.String()
}
