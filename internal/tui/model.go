package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/scanner"
	"node-modules-cleaner/internal/walk"
)

type status int

const (
	statusScanning status = iota
	statusReady
	statusConfirm
	statusDeleting
	statusDone
)

type model struct {
	root      string
	opts      scanner.Options
	del       deleter.Options
	sp        spinner.Model
	startedAt time.Time

	st        status
	folders   []scanner.Folder
	totalSize uint64
	err       error

	// list view (custom rendering, not using bubbles/list)
	selected     map[string]bool
	selectedSize uint64
	cursor       int
	scrollOffset int
	sortBy       scanner.SortField
	sortAsc      bool
	filterText   string
	filtering    bool

	// confirm/delete state
	delCh        chan tea.Msg
	delCancel    context.CancelFunc
	delTotal     int
	delCompleted int
	delLastPath  string
	delOutcomes  []deleter.Outcome
	delSummary   deleter.Summary

	// scanning stream
	scanCh     chan tea.Msg
	scanCancel context.CancelFunc

	termW int
	termH int

	showHelp bool
}

func newModel(root string, opts scanner.Options, del deleter.Options) *model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := &model{
		root:      root,
		opts:      opts,
		del:       del,
		sp:        sp,
		startedAt: time.Now(),
		st:        statusScanning,
		selected:  map[string]bool{},
		sortBy:    scanner.SortBySize,
	}
	if abs, err := filepath.Abs(root); err == nil {
		m.root = abs
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.scanCancel = cancel
	ch := make(chan tea.Msg)
	m.scanCh = ch
	go func() {
		defer close(ch)
		out, errCh := scanner.ScanStream(ctx, root, opts)
		for f := range out {
			ch <- scanItemMsg{folder: f}
		}
		ch <- scanCompleteMsg{err: <-errCh}
	}()
	return m
}

// Run starts the interactive front end on root and blocks until the user
// quits. Deletions use del; its Progress channel is managed here.
func Run(root string, opts scanner.Options, del deleter.Options) error {
	final, err := tea.NewProgram(newModel(root, opts, del)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*model); ok && m.err != nil && !errors.Is(m.err, context.Canceled) {
		return m.err
	}
	return nil
}

// messages
type scanItemMsg struct{ folder scanner.Folder }
type scanCompleteMsg struct{ err error }
type delProgressMsg struct{ progress deleter.Progress }
type delDoneMsg struct{ outcomes []deleter.Outcome }

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, waitFor(m.scanCh))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		m.adjustScroll()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case scanItemMsg:
		m.appendFolder(msg.folder)
		return m, waitFor(m.scanCh)

	case scanCompleteMsg:
		m.err = msg.err
		m.st = statusReady
		if errors.Is(msg.err, walk.ErrInvalidRoot) {
			return m, tea.Quit
		}
		return m, nil

	case delProgressMsg:
		// events from parallel removals may arrive out of order
		m.delCompleted = max(m.delCompleted, msg.progress.Completed)
		m.delLastPath = msg.progress.Path
		return m, waitFor(m.delCh)

	case delDoneMsg:
		m.finishDeletion(msg.outcomes)
		return m, nil
	}
	return m, nil
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancelAll()
		return m, tea.Quit
	}

	switch m.st {
	case statusConfirm:
		switch key {
		case "y":
			return m, m.startDeletion()
		case "n", "q", "esc":
			m.st = statusReady
		}
		return m, nil

	case statusDeleting:
		if (key == "q" || key == "esc") && m.delCancel != nil {
			// keep waiting for the done message
			m.delCancel()
		}
		return m, nil

	case statusDone:
		if key == "q" {
			return m, tea.Quit
		}
		m.st = statusReady
		return m, nil
	}

	switch key {
	case "q", "esc":
		if m.filterText != "" {
			m.filterText = ""
			m.clampCursor()
			return m, nil
		}
		m.cancelAll()
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "/":
		m.filtering = true
	}

	if m.st != statusReady {
		return m, nil
	}
	switch key {
	case "enter", "d":
		if m.selectedCount() > 0 {
			m.st = statusConfirm
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
			m.adjustScroll()
		}
	case " ", "space":
		m.toggleSelected()
	case "a":
		m.toggleAll()
	case "s":
		m.cycleSortField()
		m.applySort()
	case "r":
		m.sortAsc = !m.sortAsc
		m.applySort()
	}
	return m, nil
}

func (m *model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelAll()
		return m, tea.Quit
	case tea.KeyEsc:
		m.filterText = ""
		m.filtering = false
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if n := len([]rune(m.filterText)); n > 0 {
			m.filterText = string([]rune(m.filterText)[:n-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filterText += string(msg.Runes)
	}
	m.clampCursor()
	return m, nil
}

func (m *model) cancelAll() {
	if m.scanCancel != nil {
		m.scanCancel()
	}
	if m.delCancel != nil {
		m.delCancel()
	}
}

func waitFor(ch chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *model) appendFolder(f scanner.Folder) {
	m.folders = append(m.folders, f)
	m.totalSize += f.Size
	m.applySort()
}

// visible returns the folders passing the current filter, in display order.
func (m *model) visible() []scanner.Folder {
	if m.filterText == "" {
		return m.folders
	}
	needle := strings.ToLower(m.filterText)
	out := make([]scanner.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		if strings.Contains(strings.ToLower(m.displayPath(f.Path)), needle) {
			out = append(out, f)
		}
	}
	return out
}

func (m *model) displayPath(p string) string {
	if rel, err := filepath.Rel(m.root, p); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

func (m *model) marker() string {
	if m.opts.Marker != "" {
		return m.opts.Marker
	}
	return scanner.DefaultMarker
}

func (m *model) listHeight() int {
	if m.termH == 0 {
		return 20
	}
	headerLines := strings.Count(m.headerText(), "\n") + 1
	h := m.termH - headerLines - 1
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) adjustScroll() {
	h := m.listHeight()
	if m.cursor >= m.scrollOffset+h {
		m.scrollOffset = m.cursor - h + 1
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
}

func (m *model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll()
}

func (m *model) setSelected(f scanner.Folder, on bool) {
	if m.selected[f.Path] == on {
		return
	}
	if on {
		m.selected[f.Path] = true
		m.selectedSize += f.Size
		return
	}
	delete(m.selected, f.Path)
	m.selectedSize -= f.Size
}

func (m *model) toggleSelected() {
	vis := m.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return
	}
	f := vis[m.cursor]
	m.setSelected(f, !m.selected[f.Path])
}

// toggleAll selects every visible folder, or clears them when all are
// already selected.
func (m *model) toggleAll() {
	vis := m.visible()
	all := len(vis) > 0
	for _, f := range vis {
		if !m.selected[f.Path] {
			all = false
			break
		}
	}
	for _, f := range vis {
		m.setSelected(f, !all)
	}
}

func (m *model) cycleSortField() {
	switch m.sortBy {
	case scanner.SortBySize:
		m.sortBy = scanner.SortByName
	case scanner.SortByName:
		m.sortBy = scanner.SortByPath
	default:
		m.sortBy = scanner.SortBySize
	}
}

func (m *model) applySort() {
	scanner.SortFolders(m.folders, m.sortBy, !m.sortAsc)
}

func (m *model) selectedCount() int {
	return len(m.selected)
}

func (m *model) selectedPaths() []string {
	out := make([]string, 0, len(m.selected))
	for _, f := range m.folders {
		if m.selected[f.Path] {
			out = append(out, f.Path)
		}
	}
	return out
}

func (m *model) startDeletion() tea.Cmd {
	targets := m.selectedPaths()
	m.st = statusDeleting
	m.delTotal = len(targets)
	m.delCompleted = 0
	m.delLastPath = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.delCancel = cancel
	ch := make(chan tea.Msg)
	m.delCh = ch

	opts := m.del
	go func() {
		defer close(ch)
		// sized so no progress event is dropped
		progress := make(chan deleter.Progress, len(targets))
		opts.Progress = progress
		done := make(chan []deleter.Outcome, 1)
		go func() {
			done <- deleter.Delete(ctx, targets, opts)
			close(progress)
		}()
		for p := range progress {
			ch <- delProgressMsg{progress: p}
		}
		ch <- delDoneMsg{outcomes: <-done}
	}()

	return tea.Batch(m.sp.Tick, waitFor(ch))
}

func (m *model) finishDeletion(outcomes []deleter.Outcome) {
	sizes := make(map[string]uint64, len(m.folders))
	for _, f := range m.folders {
		sizes[f.Path] = f.Size
	}
	m.delOutcomes = outcomes
	m.delSummary = deleter.Summarize(outcomes, sizes)
	m.delCancel = nil
	m.st = statusDone

	if m.del.DryRun {
		return
	}
	rep := scanner.NewReport(m.root, m.folders).Without(m.delSummary.Deleted)
	m.folders = rep.Folders
	m.totalSize = rep.TotalSize
	for _, p := range m.delSummary.Deleted {
		m.selectedSize -= sizes[p]
		delete(m.selected, p)
	}
	m.clampCursor()
}
