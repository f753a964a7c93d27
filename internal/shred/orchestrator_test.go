package shred

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func localVolume(string) VolumeInfo {
	return VolumeInfo{FSType: "ext4", MountPoint: "/"}
}

func cowVolume(string) VolumeInfo {
	return VolumeInfo{FSType: "btrfs", MountPoint: "/"}
}

func networkVolume(string) VolumeInfo {
	return VolumeInfo{FSType: "nfs4", MountPoint: "/mnt/share", IsNetwork: true}
}

func testConfig() Config {
	return Config{Passes: 2, ChunkSize: 4 * 1024, Verify: true}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero passes", Config{Passes: 0, ChunkSize: 1024}},
		{"negative passes", Config{Passes: -1, ChunkSize: 1024}},
		{"zero chunk size", Config{Passes: 3, ChunkSize: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New(%+v) error = %v, want ErrInvalidConfig", tt.cfg, err)
			}
		})
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(context.Background(), nil); err == nil {
		t.Fatal("expected an error for an empty path list")
	}
}

func TestRunNothingDiscovered(t *testing.T) {
	dir := createTempDir(t)
	target := createTestFile(t, dir, "target.txt", []byte("keep"))
	other := createTempDir(t)
	if err := os.Symlink(target, filepath.Join(other, "only-a-link")); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}

	s, err := New(testConfig(), WithClassifier(localVolume))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{other})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.FilesProcessed != 0 || res.WasCancelled {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("symlink target was disturbed: %v", err)
	}
}

func TestRunOverwriteEndToEnd(t *testing.T) {
	dir := createTempDir(t)
	content := bytes.Repeat([]byte("S"), 64*1024)
	path := createTestFile(t, dir, "doc.bin", content)

	var final Progress
	s, err := New(Config{Passes: 3, ChunkSize: 8 * 1024, Verify: true},
		WithClassifier(localVolume),
		WithProgress(func(p Progress) { final = p }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := s.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FilesProcessed != 1 || res.FilesSucceeded != 1 || res.FilesFailed != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.BytesShredded != int64(len(content)) {
		t.Errorf("BytesShredded = %d, want %d", res.BytesShredded, len(content))
	}
	if res.Files[0].Strategy != StrategyOverwrite {
		t.Errorf("strategy = %s, want overwrite", res.Files[0].Strategy)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Fatal("file still exists after the run")
	}
	if final.Fraction != 1 {
		t.Errorf("final progress = %v, want 1", final.Fraction)
	}
}

func TestRunCryptoDirectory(t *testing.T) {
	dir := createTempDir(t)
	root := filepath.Join(dir, "vault")
	if err := os.MkdirAll(filepath.Join(root, "inner"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	createTestFile(t, root, "one.bin", bytes.Repeat([]byte("1"), 10_000))
	createTestFile(t, filepath.Join(root, "inner"), "two.bin", bytes.Repeat([]byte("2"), 20_000))

	s, err := New(testConfig(), WithClassifier(cowVolume))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FilesSucceeded != 2 || res.FilesFailed != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	for _, f := range res.Files {
		if f.Strategy != StrategyCrypto {
			t.Errorf("strategy for %s = %s, want crypto", f.Path, f.Strategy)
		}
	}
	if _, err := os.Lstat(root); !os.IsNotExist(err) {
		t.Fatal("emptied directory tree was not removed")
	}
}

func TestRunZeroByteFile(t *testing.T) {
	dir := createTempDir(t)
	path := createTestFile(t, dir, "empty.txt", nil)

	s, err := New(testConfig(), WithClassifier(localVolume))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FilesSucceeded != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.BytesShredded != 0 {
		t.Errorf("BytesShredded = %d, want 0", res.BytesShredded)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Fatal("zero-byte file still exists after the run")
	}
}

func TestRunUnlinkOnlyOnNetworkVolume(t *testing.T) {
	dir := createTempDir(t)
	path := createTestFile(t, dir, "remote.txt", []byte("remote data"))

	s, err := New(testConfig(), WithClassifier(networkVolume))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FilesSucceeded != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Files[0].Strategy != StrategyUnlinkOnly {
		t.Errorf("strategy = %s, want unlink-only", res.Files[0].Strategy)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Fatal("file still exists after the run")
	}
}

func TestRunRecordsPartialFailure(t *testing.T) {
	dir := createTempDir(t)
	createTestFile(t, dir, "a.txt", bytes.Repeat([]byte("a"), 5000))
	createTestFile(t, dir, "b.txt", bytes.Repeat([]byte("b"), 5000))
	createTestFile(t, dir, "c.txt", bytes.Repeat([]byte("c"), 5000))

	// the classifier runs right before each file's erasure; removing the
	// file there makes its open fail deterministically
	sabotage := func(path string) VolumeInfo {
		if filepath.Base(path) == "b.txt" {
			os.Remove(path)
		}
		return localVolume(path)
	}

	s, err := New(testConfig(), WithClassifier(sabotage))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FilesProcessed != 3 || res.FilesSucceeded != 2 || res.FilesFailed != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	for _, f := range res.Files {
		failed := filepath.Base(f.Path) == "b.txt"
		if failed && f.Succeeded() {
			t.Errorf("%s should have failed", f.Path)
		}
		if !failed && !f.Succeeded() {
			t.Errorf("%s failed: %v", f.Path, f.Err)
		}
	}
}

func TestRunCancellationStopsBatch(t *testing.T) {
	dir := createTempDir(t)
	for _, name := range []string{"01.bin", "02.bin", "03.bin", "04.bin"} {
		createTestFile(t, dir, name, bytes.Repeat([]byte("x"), 8192))
	}

	var s *Shredder
	trigger := func(path string) VolumeInfo {
		if filepath.Base(path) == "03.bin" {
			s.Cancel()
		}
		return localVolume(path)
	}

	s, err := New(testConfig(), WithClassifier(trigger))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !res.WasCancelled {
		t.Fatal("WasCancelled not set")
	}
	if res.FilesProcessed != 2 {
		t.Fatalf("FilesProcessed = %d, want 2: %+v", res.FilesProcessed, res)
	}

	// the two completed files are gone, the interrupted and pending ones survive
	for _, name := range []string{"01.bin", "02.bin"} {
		if _, err := os.Lstat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", name)
		}
	}
	for _, name := range []string{"03.bin", "04.bin"} {
		if _, err := os.Lstat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should have survived cancellation: %v", name, err)
		}
	}
}

func TestRunReportsHardLinkedFiles(t *testing.T) {
	dir := createTempDir(t)
	path := createTestFile(t, dir, "linked.txt", []byte("shared blocks"))

	aliasDir := createTempDir(t)
	alias := filepath.Join(aliasDir, "alias.txt")
	if err := os.Link(path, alias); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	s, err := New(testConfig(), WithClassifier(localVolume))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FilesSucceeded != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.HardLinkedFiles) != 1 || res.HardLinkedFiles[0] != path {
		t.Errorf("HardLinkedFiles = %v, want [%s]", res.HardLinkedFiles, path)
	}
	if _, err := os.Lstat(alias); err != nil {
		t.Fatalf("other hard link should remain: %v", err)
	}
}

func TestShredderReusableAcrossRuns(t *testing.T) {
	dir := createTempDir(t)
	first := createTestFile(t, dir, "first.txt", []byte("one"))
	second := createTestFile(t, dir, "second.txt", []byte("two"))

	s, err := New(testConfig(), WithClassifier(localVolume))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, path := range []string{first, second} {
		res, err := s.Run(context.Background(), []string{path})
		if err != nil {
			t.Fatalf("Run(%s) failed: %v", path, err)
		}
		if res.FilesSucceeded != 1 {
			t.Fatalf("Run(%s): unexpected counts: %+v", path, res)
		}
	}
}
