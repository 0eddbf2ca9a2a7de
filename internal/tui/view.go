package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"node-modules-cleaner/internal/report"
	"node-modules-cleaner/pkg/utils"
)

func (m *model) View() string {
	switch m.st {
	case statusScanning, statusReady:
		base := m.headerText() + m.renderList()
		if m.showHelp {
			base += "\n" + m.helpText()
		}
		return base
	case statusConfirm:
		return fmt.Sprintf("Confirm delete %d %s folders, freeing ~%s? (y/N)\nPress y to confirm, n/esc to cancel.\n",
			m.selectedCount(), m.marker(), utils.HumanizeBytes(m.selectedSize))
	case statusDeleting:
		mode := ""
		if m.del.DryRun {
			mode = " [dry-run]"
		}
		return fmt.Sprintf("Deleting%s... %s\nProgress: %d/%d\nLast: %s\nPress q to cancel.\n",
			mode, m.sp.View(), m.delCompleted, m.delTotal, m.delLastPath)
	case statusDone:
		return m.doneText()
	default:
		return ""
	}
}

func (m *model) doneText() string {
	var b strings.Builder
	verb := "Freed"
	if m.del.DryRun {
		verb = "Would free"
		b.WriteString(warnStyle.Render("Dry run, nothing was removed.") + "\n")
	}
	fmt.Fprintf(&b, "Delete complete. %s %s. Deleted: %d  Failures: %d\n",
		verb, utils.HumanizeBytes(m.delSummary.Freed), len(m.delSummary.Deleted), len(m.delSummary.Failures))
	for _, f := range m.delSummary.Failures {
		fmt.Fprintf(&b, " %s %s: %s\n", errorStyle.Render("x"), m.displayPath(f.Path), f.Error)
	}
	b.WriteString(report.FailureSummary(m.delOutcomes))
	b.WriteString("Press q to quit or any key to return.\n")
	return b.String()
}

// Custom list rendering - no bubbles/list component
func (m *model) renderList() string {
	vis := m.visible()
	if len(vis) == 0 {
		if m.st == statusScanning {
			return ""
		}
		if m.filterText != "" {
			return fmt.Sprintf("No %s matches filter %q.\n", m.marker(), m.filterText)
		}
		return fmt.Sprintf("No %s found.\n", m.marker())
	}

	var b strings.Builder
	start := m.scrollOffset
	end := start + m.listHeight()
	if end > len(vis) {
		end = len(vis)
	}

	for i := start; i < end; i++ {
		f := vis[i]

		prefix := "  "
		if i == m.cursor && m.st == statusReady {
			prefix = cursorStyle.Render(">") + " "
		}

		mark := markStyle.Render("[ ]")
		path := m.displayPath(f.Path)
		if m.selected[f.Path] {
			mark = markSelectedStyle.Render("[x]")
			path = pathStyleSelected.Render(path)
		}

		size := sizeColorStyle(f.Size).Render(fmt.Sprintf("%7s", utils.HumanizeBytesCompact(f.Size)))
		project := projectStyle.Render(f.ParentProject)

		b.WriteString(prefix + mark + " " + size + " " + path + " " + project + "\n")
	}
	return b.String()
}

func (m *model) headerText() string {
	switch m.st {
	case statusScanning:
		elapsed := time.Since(m.startedAt).Round(time.Millisecond)
		return fmt.Sprintf("Scanning %s... %s  Found: %d  Total: %s  Elapsed: %s\nPress ? for help\n\n",
			m.root, m.sp.View(), len(m.folders), utils.HumanizeBytes(m.totalSize), elapsed)
	case statusReady:
		var b strings.Builder
		if m.err != nil {
			b.WriteString(errorStyle.Render("Scan stopped: "+m.err.Error()) + "\n")
		}
		order := "desc"
		if m.sortAsc {
			order = "asc"
		}
		fmt.Fprintf(&b, "%s  Found: %d  Total: %s  Selected: %d (%s)  Sort: %s %s\n",
			headerStyle.Render(m.root), len(m.folders), utils.HumanizeBytes(m.totalSize),
			m.selectedCount(), utils.HumanizeBytes(m.selectedSize), m.sortBy, order)
		if m.filtering || m.filterText != "" {
			cursor := ""
			if m.filtering {
				cursor = "_"
			}
			b.WriteString(highlightStyle.Render("/"+m.filterText+cursor) + "\n")
		}
		b.WriteString("Keys: ? help, space select, a all, s sort, r reverse, / filter, d delete, q quit\n\n")
		return b.String()
	default:
		return ""
	}
}

func (m *model) helpText() string {
	lines := []string{
		"Help (press ? to close):",
		"  ↑/k, ↓/j  Move cursor",
		"  space     Toggle selection",
		"  a         Select or clear all shown",
		"  s         Cycle sort field (size/name/path)",
		"  r         Reverse sort",
		"  /         Filter by path (enter keeps, esc clears)",
		"  d/enter   Delete selected",
		"  q/esc     Quit (cancels scan or delete)",
	}
	return lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).Render(strings.Join(lines, "\n"))
}

var (
	cursorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))            // purple
	markStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	markSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true) // green
	pathStyleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	projectStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	highlightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("227")).Bold(true) // yellow
	headerStyle       = lipgloss.NewStyle().Bold(true)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// Choose color for size: dark red > light red > orange > yellow > green > light gray > dark gray
func sizeColorStyle(b uint64) lipgloss.Style {
	const (
		MB = 1024 * 1024
		GB = 1024 * MB
	)
	switch {
	case b >= 8*GB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	case b >= 4*GB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	case b >= 2*GB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	case b >= 1*GB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	case b >= 256*MB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	case b >= 64*MB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	}
}
