package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"node-modules-cleaner/internal/walk"
)

func writeFileOfSize(t *testing.T, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
}

func sumSizes(folders []Folder) uint64 {
	var total uint64
	for _, f := range folders {
		total += f.Size
	}
	return total
}

func byPath(r *Report) map[string]Folder {
	m := make(map[string]Folder, len(r.Folders))
	for _, f := range r.Folders {
		m[f.Path] = f
	}
	return m
}

func TestScan_FindsAndSizes(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	aNM := filepath.Join(root, "a", "node_modules")
	writeFileOfSize(t, filepath.Join(aNM, "x.txt"), 5)
	writeFileOfSize(t, filepath.Join(aNM, "y.txt"), 7)
	bNM := filepath.Join(root, "b", "node_modules")
	writeFileOfSize(t, filepath.Join(bNM, "z.txt"), 3)
	mkdirAll(t, filepath.Join(root, "c"))

	report, err := Scan(context.Background(), root, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(report.Folders))
	}
	if report.TotalSize != 15 {
		t.Fatalf("total size mismatch: got %d want 15", report.TotalSize)
	}
	if report.ScanPath != root {
		t.Fatalf("scan path = %q, want %q", report.ScanPath, root)
	}

	got := byPath(report)
	want := []Folder{
		{Path: aNM, Size: 12, ParentProject: "a"},
		{Path: bNM, Size: 3, ParentProject: "b"},
	}
	for _, w := range want {
		if got[w.Path] != w {
			t.Fatalf("folder %s = %+v, want %+v", w.Path, got[w.Path], w)
		}
	}
}

func TestScan_TotalMatchesFolders(t *testing.T) {
	root := t.TempDir()
	for i, name := range []string{"p1", "p2", "p3", "nested/p4", "nested/deeper/p5"} {
		nm := filepath.Join(root, filepath.FromSlash(name), "node_modules")
		writeFileOfSize(t, filepath.Join(nm, "pkg", "index.js"), int64(100*(i+1)))
		writeFileOfSize(t, filepath.Join(nm, "README"), int64(i))
	}

	report, err := Scan(context.Background(), root, Options{Concurrency: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 5 {
		t.Fatalf("expected 5 folders, got %d", len(report.Folders))
	}
	if report.TotalSize != sumSizes(report.Folders) {
		t.Fatalf("total %d != sum of folders %d", report.TotalSize, sumSizes(report.Folders))
	}
}

func TestScan_NestedMarkersAreNotReported(t *testing.T) {
	root := t.TempDir()
	outer := filepath.Join(root, "app", "node_modules")
	writeFileOfSize(t, filepath.Join(outer, "a.js"), 10)
	writeFileOfSize(t, filepath.Join(outer, "dep", "node_modules", "b.js"), 20)
	writeFileOfSize(t, filepath.Join(outer, "node_modules", "c.js"), 30)

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 {
		t.Fatalf("expected 1 folder, got %d: %+v", len(report.Folders), report.Folders)
	}
	// nested markers still count towards the outer size
	if report.Folders[0].Size != 60 {
		t.Fatalf("size = %d, want 60", report.Folders[0].Size)
	}
}

func TestScan_HiddenDirectoriesExcluded(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, ".cache", "proj", "node_modules", "x"), 100)
	writeFileOfSize(t, filepath.Join(root, "proj", "node_modules", "y"), 1)

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 || report.TotalSize != 1 {
		t.Fatalf("report = %+v, want the single visible folder", report)
	}
}

func TestScan_HiddenRootIsWalked(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".workspace")
	writeFileOfSize(t, filepath.Join(root, "proj", "node_modules", "y"), 9)

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 || report.TotalSize != 9 {
		t.Fatalf("report = %+v, want one folder of 9 bytes", report)
	}
}

func TestScan_InvalidRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeFileOfSize(t, file, 1)

	for name, root := range map[string]string{
		"missing": filepath.Join(dir, "missing"),
		"not dir": file,
	} {
		t.Run(name, func(t *testing.T) {
			report, err := Scan(context.Background(), root, Options{})
			if !errors.Is(err, walk.ErrInvalidRoot) {
				t.Fatalf("err = %v, want ErrInvalidRoot", err)
			}
			if report != nil {
				t.Fatalf("expected no report, got %+v", report)
			}
		})
	}
}

func TestScan_EmptyTree(t *testing.T) {
	report, err := Scan(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 0 || report.TotalSize != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
	if report.Folders == nil {
		t.Fatal("folders should be an empty slice, not nil")
	}
}

func TestScan_RootIsMarker(t *testing.T) {
	root := filepath.Join(t.TempDir(), "node_modules")
	writeFileOfSize(t, filepath.Join(root, "dep", "i.js"), 4)

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 || report.TotalSize != 4 {
		t.Fatalf("report = %+v, want the root itself", report)
	}
}

func TestScan_RootInsideMarker(t *testing.T) {
	root := filepath.Join(t.TempDir(), "node_modules", "dep")
	writeFileOfSize(t, filepath.Join(root, "node_modules", "x"), 4)

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 0 {
		t.Fatalf("expected nothing below an existing match, got %+v", report.Folders)
	}
}

func TestScan_CustomMarker(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "svc", "target", "app.jar"), 50)
	writeFileOfSize(t, filepath.Join(root, "web", "node_modules", "x"), 5)
	writeFileOfSize(t, filepath.Join(root, "web", "Target", "y"), 5)

	report, err := Scan(context.Background(), root, Options{Marker: "target"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 || report.Folders[0].ParentProject != "svc" {
		t.Fatalf("report = %+v, want only svc/target", report.Folders)
	}
}

func TestScan_MaxDepth(t *testing.T) {
	root := t.TempDir()
	// root/level1/level2/node_modules
	nm := filepath.Join(root, "level1", "level2", "node_modules")
	writeFileOfSize(t, filepath.Join(nm, "a.bin"), 10)

	report, err := Scan(context.Background(), root, Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 0 {
		t.Fatalf("expected 0 folders with MaxDepth=2, got %d", len(report.Folders))
	}

	report, err = Scan(context.Background(), root, Options{MaxDepth: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 {
		t.Fatalf("expected 1 folder with MaxDepth=3, got %d", len(report.Folders))
	}
}

func TestScan_Exclude(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "node_modules")
	b := filepath.Join(root, "b", "node_modules")
	writeFileOfSize(t, filepath.Join(a, "x"), 10)
	writeFileOfSize(t, filepath.Join(b, "y"), 10)

	report, err := Scan(context.Background(), root, Options{Excludes: []string{"a/"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 || report.Folders[0].ParentProject != "b" {
		t.Fatalf("report = %+v, want only b", report.Folders)
	}
	if report.TotalSize != 10 {
		t.Fatalf("unexpected total: %d", report.TotalSize)
	}

	// excluding the marker itself skips everything
	report, err = Scan(context.Background(), root, Options{Excludes: []string{"node_modules"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 0 {
		t.Fatalf("expected 0 folders, got %d", len(report.Folders))
	}
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "a", "node_modules", "x"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := Scan(ctx, root, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if report != nil {
		t.Fatalf("expected no report, got %+v", report)
	}
}

func TestScanStream_MatchesScan(t *testing.T) {
	root := t.TempDir()
	for i, name := range []string{"a", "b", "c/d"} {
		writeFileOfSize(t, filepath.Join(root, filepath.FromSlash(name), "node_modules", "f"), int64(i+1))
	}

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, errCh := ScanStream(context.Background(), root, Options{Concurrency: 2})
	var streamed []Folder
	for f := range out {
		streamed = append(streamed, f)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if len(streamed) != len(report.Folders) {
		t.Fatalf("streamed %d folders, scan found %d", len(streamed), len(report.Folders))
	}
	want := byPath(report)
	for _, f := range streamed {
		if want[f.Path] != f {
			t.Fatalf("streamed %+v, scan has %+v", f, want[f.Path])
		}
	}
}

func TestScanStream_InvalidRoot(t *testing.T) {
	out, errCh := ScanStream(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	for range out {
		t.Fatal("no folders expected")
	}
	if err := <-errCh; !errors.Is(err, walk.ErrInvalidRoot) {
		t.Fatalf("err = %v, want ErrInvalidRoot", err)
	}
}

func TestFind_DiscoveryOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c", "a", "b"} {
		mkdirAll(t, filepath.Join(root, name, "node_modules"))
	}

	paths, err := Find(root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sort.StringsAreSorted(paths) || len(paths) != 3 {
		t.Fatalf("paths = %v, want three in lexical walk order", paths)
	}
}

func TestParentProject(t *testing.T) {
	sep := string(filepath.Separator)
	cases := []struct {
		in   string
		want string
	}{
		{filepath.Join(sep+"home", "me", "app", "node_modules"), "app"},
		{filepath.Join(sep+"proj", "node_modules"), "proj"},
		{sep + "node_modules", UnknownProject},
		{"node_modules", UnknownProject},
		{"", UnknownProject},
		{sep, UnknownProject},
		{filepath.Join("..", "node_modules"), UnknownProject},
	}
	for _, c := range cases {
		if got := ParentProject(c.in); got != c.want {
			t.Fatalf("ParentProject(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestScan_UnreadableEntriesInsideMatch(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	nm := filepath.Join(root, "app", "node_modules")
	writeFileOfSize(t, filepath.Join(nm, "dep", "index.js"), 8)
	locked := filepath.Join(nm, "locked")
	writeFileOfSize(t, filepath.Join(locked, "big.bin"), 500)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Folders) != 1 || report.TotalSize != 8 {
		t.Fatalf("report = %+v, want one folder of 8 readable bytes", report)
	}
}

func TestScan_SymlinkedRootKeepsRequestedPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges")
	}
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	target := filepath.Join(base, "real")
	writeFileOfSize(t, filepath.Join(target, "a", "node_modules", "x.js"), 6)
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	report, err := Scan(context.Background(), link, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ScanPath != link {
		t.Fatalf("ScanPath = %q, want the requested %q", report.ScanPath, link)
	}
	if len(report.Folders) != 1 || report.TotalSize != 6 {
		t.Fatalf("report = %+v", report)
	}
	if want := filepath.Join(target, "a", "node_modules"); report.Folders[0].Path != want {
		t.Fatalf("folder path = %q, want %q under the link target", report.Folders[0].Path, want)
	}
}
