package jscache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const key = "https://www.youtube.com/s/player/abc/base.js"

func TestEntryExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		exp  time.Time
		want bool
	}{
		{time.Time{}, false},
		{now.Add(time.Second), false},
		{now, true},
		{now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		if got := (Entry{ExpiresAt: tt.exp}).Expired(now); got != tt.want {
			t.Errorf("Expired(%v) = %v, want %v", tt.exp, got, tt.want)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewMemoryStore()
	c.now = func() time.Time { return now }

	if _, ok := c.Get(key); ok {
		t.Fatalf("expected empty cache miss")
	}
	c.Set(key, Entry{Body: "var a=1;", ExpiresAt: now.Add(time.Minute)})
	got, ok := c.Get(key)
	if !ok || got.Body != "var a=1;" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected expired entry to be a miss")
	}
	if len(c.data) != 0 {
		t.Fatalf("expired entry should be dropped, have %d", len(c.data))
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "players")
	fc, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if fc.Dir() != dir {
		t.Fatalf("Dir = %q", fc.Dir())
	}

	if _, ok := fc.Get(key); ok {
		t.Fatalf("expected empty cache miss")
	}
	fc.Set(key, Entry{Body: "var a=1;", ExpiresAt: time.Now().Add(time.Hour)})

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get(key)
	if !ok || got.Body != "var a=1;" {
		t.Fatalf("Get after reopen = %+v, %v", got, ok)
	}
}

func TestFileStoreDropsBadEntries(t *testing.T) {
	fc, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	fc.Set(key, Entry{Body: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	if _, ok := fc.Get(key); ok {
		t.Fatalf("expected expired entry to be a miss")
	}
	if _, err := os.Stat(fc.filenameForKey(key)); !os.IsNotExist(err) {
		t.Fatalf("expired file should be removed, stat err = %v", err)
	}

	if err := os.WriteFile(fc.filenameForKey(key), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.Get(key); ok {
		t.Fatalf("corrupt file should be a miss")
	}
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
