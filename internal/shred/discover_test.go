package shred

import (
	"os"
	"path/filepath"
	"testing"
)

func createTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "shred-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

func createTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func pathSet(files []DiscoveredFile) map[string]bool {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f.Path] = true
	}
	return set
}

func TestDiscoverSkipsSymlinks(t *testing.T) {
	dir := createTempDir(t)
	a := createTestFile(t, dir, "a.txt", []byte("aaa"))
	b := createTestFile(t, dir, "b.txt", []byte("bbb"))
	hidden := createTestFile(t, dir, ".hidden", []byte("hhh"))

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	c := createTestFile(t, sub, "c.txt", []byte("ccc"))

	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}

	files, err := Discover([]string{dir}, DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("discovered %d files, want 4: %+v", len(files), files)
	}

	got := pathSet(files)
	for _, want := range []string{a, b, hidden, c} {
		if !got[want] {
			t.Errorf("missing %s from discovery", want)
		}
	}
	if got[link] {
		t.Errorf("symlink %s must not be discovered", link)
	}
}

func TestDiscoverPrunesSymlinkedDirectory(t *testing.T) {
	outside := createTempDir(t)
	secret := createTestFile(t, outside, "secret.txt", []byte("secret"))

	dir := createTempDir(t)
	if err := os.Symlink(outside, filepath.Join(dir, "linkdir")); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}

	files, err := Discover([]string{dir}, DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("discovered %d files through a symlinked directory, want 0", len(files))
	}
	if _, err := os.Stat(secret); err != nil {
		t.Fatalf("file outside the tree was disturbed: %v", err)
	}
}

func TestDiscoverSymlinkRoot(t *testing.T) {
	dir := createTempDir(t)
	target := createTestFile(t, dir, "target.txt", []byte("data"))

	link := filepath.Join(dir, "root-link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}

	files, err := Discover([]string{link}, DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("symlink root produced %d files, want 0", len(files))
	}
}

func TestDiscoverSingleFileRoot(t *testing.T) {
	dir := createTempDir(t)
	path := createTestFile(t, dir, "solo.txt", []byte("12345"))

	files, err := Discover([]string{path}, DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("discovered %d files, want 1", len(files))
	}
	if files[0].Path != path {
		t.Errorf("path = %s, want %s", files[0].Path, path)
	}
	if files[0].Size != 5 {
		t.Errorf("size = %d, want 5", files[0].Size)
	}
	if files[0].Nlink != 1 {
		t.Errorf("nlink = %d, want 1", files[0].Nlink)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	dir := createTempDir(t)
	_, err := Discover([]string{filepath.Join(dir, "nope.txt")}, DiscoverOptions{})
	if err == nil {
		t.Fatal("expected an error for a missing root")
	}
	if !IsNotFound(err) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDiscoverHardLinkCount(t *testing.T) {
	dir := createTempDir(t)
	path := createTestFile(t, dir, "orig.txt", []byte("linked"))
	if err := os.Link(path, filepath.Join(dir, "alias.txt")); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	files, err := Discover([]string{path}, DiscoverOptions{})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("discovered %d files, want 1", len(files))
	}
	if files[0].Nlink != 2 {
		t.Errorf("nlink = %d, want 2", files[0].Nlink)
	}
}

func TestDiscoverExclusions(t *testing.T) {
	dir := createTempDir(t)
	keep := createTestFile(t, dir, "keep.txt", []byte("k"))
	createTestFile(t, dir, "app.log", []byte("l"))
	createTestFile(t, dir, ".DS_Store", []byte("d"))
	createTestFile(t, dir, "tmp-scratch", []byte("t"))

	opts := DiscoverOptions{
		ExcludeFiles:    []string{".DS_Store"},
		ExcludePatterns: []string{`^tmp-`},
		ExcludeGlobs:    []string{"*.log"},
	}
	files, err := Discover([]string{dir}, opts)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("discovered %d files, want 1: %+v", len(files), files)
	}
	if files[0].Path != keep {
		t.Errorf("kept %s, want %s", files[0].Path, keep)
	}
}

func TestDiscoverBadExcludePattern(t *testing.T) {
	dir := createTempDir(t)
	_, err := Discover([]string{dir}, DiscoverOptions{ExcludePatterns: []string{"("}})
	if err == nil {
		t.Fatal("expected an error for an invalid exclusion pattern")
	}
}
