package shred

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSecureUnlink(t *testing.T) {
	dir := createTempDir(t)
	path := createTestFile(t, dir, "gone.txt", []byte("bye"))

	if err := SecureUnlink(path); err != nil {
		t.Fatalf("SecureUnlink failed: %v", err)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Fatalf("file still exists after SecureUnlink: %v", err)
	}
}

func TestSecureUnlinkMissing(t *testing.T) {
	dir := createTempDir(t)
	err := SecureUnlink(filepath.Join(dir, "never-existed"))
	if !IsNotFound(err) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRemoveEmptyDirs(t *testing.T) {
	dir := createTempDir(t)
	nested := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	RemoveEmptyDirs(filepath.Join(dir, "a"))

	if _, err := os.Lstat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Fatal("empty directory tree was not removed")
	}
}

func TestRemoveEmptyDirsKeepsNonEmpty(t *testing.T) {
	dir := createTempDir(t)
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	kept := createTestFile(t, sub, "still-here.txt", []byte("x"))

	RemoveEmptyDirs(filepath.Join(dir, "a"))

	if _, err := os.Lstat(kept); err != nil {
		t.Fatalf("file inside a non-empty directory was disturbed: %v", err)
	}
}
