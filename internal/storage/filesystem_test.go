package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWriteRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "./downloads/kirie-1.png", []byte("png"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if key != "downloads/kirie-1.png" {
		t.Fatalf("unexpected key %q", key)
	}
	got, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "png" {
		t.Fatalf("unexpected content %q", got)
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), "downloads", "kirie-1.png.tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestFileStoreReadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Read(context.Background(), "history.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"a.png", "a.png", true},
		{"/abs/b.png", "abs/b.png", true},
		{`dir\c.png`, "dir/c.png", true},
		{"../escape", "", false},
		{"a/../../escape", "", false},
		{"  ", "", false},
		{".", "", false},
	}
	for _, tc := range cases {
		got, err := sanitizeKey(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("sanitizeKey(%q) expected error, got %q", tc.in, got)
		}
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
