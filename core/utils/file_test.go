package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFile_PreservesContentAndMtime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.flac")
	if err := os.WriteFile(src, []byte("fLaC"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	dst := filepath.Join(dir, "out", "nested", "dst.flac")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "fLaC" {
		t.Fatalf("content mismatch: %q, %v", b, err)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !fi.ModTime().Equal(mtime) {
		t.Fatalf("mtime not preserved: %v", fi.ModTime())
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")
	if err := CopyFile(filepath.Join(dir, "nope"), dst); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("dst should not exist")
	}
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "index.json")
	if err := WriteFileAtomic(p, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(p, []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "two" {
		t.Fatalf("got %q", b)
	}
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSlashRel(t *testing.T) {
	base := filepath.Join("a", "b")
	got, err := SlashRel(base, filepath.Join("a", "b", "c", "d.mp3"))
	if err != nil || got != "c/d.mp3" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestIsWithin(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		dir, path string
		want      bool
	}{
		{root, root, true},
		{root, filepath.Join(root, "music"), true},
		{filepath.Join(root, "dist"), filepath.Join(root, "distant"), false},
		{filepath.Join(root, "music"), root, false},
		{filepath.Join(root, "a"), filepath.Join(root, "b"), false},
	}
	for _, tc := range cases {
		got, err := IsWithin(tc.dir, tc.path)
		if err != nil {
			t.Fatalf("IsWithin(%q, %q): %v", tc.dir, tc.path, err)
		}
		if got != tc.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tc.dir, tc.path, got, tc.want)
		}
	}
}
