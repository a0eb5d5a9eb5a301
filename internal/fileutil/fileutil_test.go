package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMoveRenamesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "b.mp4")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be gone, got %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected replaced content, got %q", got)
	}
}

func TestMoveFallsBackToVerifiedCopyAcrossDevices(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "sub", "a.mp4")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, src, "payload")

	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.EXDEV}
	}
	t.Cleanup(func() { renameFunc = os.Rename })

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed after copy, got %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestMovePropagatesOtherErrors(t *testing.T) {
	dir := t.TempDir()
	err := Move(filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "x.mp4"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestMoveNoReplaceRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "b.mp4")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	err := MoveNoReplace(src, dst)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected source untouched: %v", err)
	}
}

func TestUniquePathAppendsCounter(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "clip.mp4")

	got, err := UniquePath(base)
	if err != nil || got != base {
		t.Fatalf("expected free path unchanged, got %q (%v)", got, err)
	}

	writeFile(t, base, "x")
	writeFile(t, filepath.Join(dir, "clip (1).mp4"), "x")
	got, err = UniquePath(base)
	if err != nil {
		t.Fatalf("UniquePath returned error: %v", err)
	}
	if want := filepath.Join(dir, "clip (2).mp4"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRemoveIfExistsIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")
	writeFile(t, path, "")

	removed, err := RemoveIfExists(path)
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = RemoveIfExists(path)
	if err != nil || removed {
		t.Fatalf("expected no-op on missing file, got removed=%v err=%v", removed, err)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(src, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(data) {
		t.Fatalf("size mismatch: got %d, want %d", len(got), len(data))
	}
}

func TestFileSizeRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	if _, err := FileSize(dir); err == nil {
		t.Fatal("expected error for directory")
	}
	path := filepath.Join(dir, "f")
	writeFile(t, path, "abc")
	size, err := FileSize(path)
	if err != nil || size != 3 {
		t.Fatalf("expected size 3, got %d (%v)", size, err)
	}
}
