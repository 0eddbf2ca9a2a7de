package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/scanner"
)

func newTestModel(root string) *model {
	return &model{
		root:     root,
		st:       statusReady,
		selected: map[string]bool{},
		sortBy:   scanner.SortBySize,
	}
}

func press(t *testing.T, m *model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func seed(m *model) {
	for _, f := range []scanner.Folder{
		{Path: "/w/a/node_modules", Size: 10, ParentProject: "a"},
		{Path: "/w/b/node_modules", Size: 30, ParentProject: "b"},
		{Path: "/w/c/node_modules", Size: 20, ParentProject: "c"},
	} {
		m.Update(scanItemMsg{folder: f})
	}
}

func TestModel_AppendSortsBySizeDesc(t *testing.T) {
	m := newTestModel("/w")
	seed(m)
	if m.totalSize != 60 {
		t.Fatalf("totalSize = %d, want 60", m.totalSize)
	}
	want := []string{"b", "c", "a"}
	for i, f := range m.folders {
		if f.ParentProject != want[i] {
			t.Fatalf("order = %v, want %v", m.folders, want)
		}
	}

	press(t, m, "s") // name
	if m.sortBy != scanner.SortByName || m.folders[0].ParentProject != "c" {
		t.Fatalf("after s: sortBy=%s first=%s", m.sortBy, m.folders[0].ParentProject)
	}
	press(t, m, "r")
	if m.folders[0].ParentProject != "a" {
		t.Fatalf("after r: first=%s, want a", m.folders[0].ParentProject)
	}
}

func TestModel_SelectAndConfirm(t *testing.T) {
	m := newTestModel("/w")
	seed(m)

	press(t, m, "d")
	if m.st != statusReady {
		t.Fatal("confirm must need a selection")
	}

	press(t, m, " ", "j", " ")
	if m.selectedCount() != 2 || m.selectedSize != 50 {
		t.Fatalf("selected %d (%d bytes), want 2 (50)", m.selectedCount(), m.selectedSize)
	}
	press(t, m, " ")
	if m.selectedCount() != 1 || m.selectedSize != 30 {
		t.Fatalf("after unselect: %d (%d bytes)", m.selectedCount(), m.selectedSize)
	}

	press(t, m, "d")
	if m.st != statusConfirm {
		t.Fatalf("status = %v, want confirm", m.st)
	}
	if !strings.Contains(m.View(), "Confirm delete 1 node_modules") {
		t.Fatalf("confirm view = %q", m.View())
	}
	press(t, m, "n")
	if m.st != statusReady {
		t.Fatal("n should return to the list")
	}
}

func TestModel_ToggleAllAndFilter(t *testing.T) {
	m := newTestModel("/w")
	seed(m)

	press(t, m, "/")
	if !m.filtering {
		t.Fatal("/ should start filtering")
	}
	press(t, m, "a", "/")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filtering || m.filterText != "a/" {
		t.Fatalf("filtering=%v text=%q", m.filtering, m.filterText)
	}
	if vis := m.visible(); len(vis) != 1 || vis[0].ParentProject != "a" {
		t.Fatalf("visible = %+v", vis)
	}

	press(t, m, "a")
	if m.selectedCount() != 1 || !m.selected["/w/a/node_modules"] {
		t.Fatalf("toggle all under filter selected %v", m.selected)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterText != "" {
		t.Fatal("esc should clear the filter first")
	}
	press(t, m, "a")
	if m.selectedCount() != 3 || m.selectedSize != 60 {
		t.Fatalf("select all: %d (%d bytes)", m.selectedCount(), m.selectedSize)
	}
	press(t, m, "a")
	if m.selectedCount() != 0 || m.selectedSize != 0 {
		t.Fatalf("clear all: %d (%d bytes)", m.selectedCount(), m.selectedSize)
	}
}

func TestModel_FinishDeletion(t *testing.T) {
	m := newTestModel("/w")
	seed(m)
	press(t, m, "a")

	m.finishDeletion([]deleter.Outcome{
		{Path: "/w/a/node_modules", Success: true},
		{Path: "/w/b/node_modules", Success: true},
		{Path: "/w/c/node_modules", Error: "permission denied", Reason: deleter.ReasonPermissionDenied},
	})

	if m.st != statusDone {
		t.Fatalf("status = %v", m.st)
	}
	if m.delSummary.Freed != 40 || len(m.delSummary.Failures) != 1 {
		t.Fatalf("summary = %+v", m.delSummary)
	}
	if len(m.folders) != 1 || m.totalSize != 20 {
		t.Fatalf("folders = %+v total = %d", m.folders, m.totalSize)
	}
	if m.selectedCount() != 1 || m.selectedSize != 20 {
		t.Fatalf("selection = %v (%d bytes)", m.selected, m.selectedSize)
	}
	view := m.View()
	for _, want := range []string{"Freed 40 B", "Failures: 1", "Permission denied"} {
		if !strings.Contains(view, want) {
			t.Fatalf("done view missing %q:\n%s", want, view)
		}
	}

	press(t, m, "x")
	if m.st != statusReady {
		t.Fatal("any key should return to the list")
	}
}

func TestModel_DeleteRoundTrip(t *testing.T) {
	root := t.TempDir()
	m := newTestModel(root)
	for _, name := range []string{"a", "b"} {
		dir := filepath.Join(root, name, "node_modules")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "x.js"), make([]byte, 5), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		m.Update(scanItemMsg{folder: scanner.Folder{Path: dir, Size: 5, ParentProject: name}})
	}

	press(t, m, "a", "d", "y")
	if m.st != statusDeleting || m.delTotal != 2 {
		t.Fatalf("status=%v total=%d", m.st, m.delTotal)
	}

	deadline := time.After(5 * time.Second)
	for m.st == statusDeleting {
		select {
		case msg, ok := <-m.delCh:
			if !ok {
				t.Fatal("delete channel closed before done")
			}
			m.Update(msg)
		case <-deadline:
			t.Fatal("deletion did not finish")
		}
	}

	if m.delCompleted != 2 {
		t.Fatalf("delCompleted = %d, want 2", m.delCompleted)
	}
	if len(m.folders) != 0 || m.delSummary.Freed != 10 {
		t.Fatalf("folders=%v freed=%d", m.folders, m.delSummary.Freed)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "node_modules")); !os.IsNotExist(err) {
		t.Fatalf("folder still present: %v", err)
	}
}

func TestModel_DryRunKeepsFolders(t *testing.T) {
	m := newTestModel("/w")
	m.del.DryRun = true
	seed(m)
	press(t, m, "a")
	m.finishDeletion([]deleter.Outcome{
		{Path: "/w/a/node_modules", Success: true},
		{Path: "/w/b/node_modules", Success: true},
		{Path: "/w/c/node_modules", Success: true},
	})
	if len(m.folders) != 3 || m.totalSize != 60 {
		t.Fatalf("dry run removed folders: %+v", m.folders)
	}
	if !strings.Contains(m.View(), "Would free 60 B") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestSizeColorStyle_Thresholds(t *testing.T) {
	small := sizeColorStyle(1).GetForeground()
	huge := sizeColorStyle(10 << 30).GetForeground()
	if small == huge {
		t.Fatal("size colors should differ across thresholds")
	}
}
