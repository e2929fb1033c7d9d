package jscache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/ytinfo/internal/logger"
)

// FileStore keeps player scripts on disk, one JSON file per key.
// Expired or unreadable files are removed on access.
type FileStore struct {
	rootDir string
	mu      sync.Mutex
	now     func() time.Time
}

// NewFileStore creates a file-backed store under rootDir, creating the
// directory when needed.
func NewFileStore(rootDir string) (*FileStore, error) {
	if rootDir == "" {
		return nil, errors.New("jscache: rootDir is required")
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{rootDir: rootDir, now: time.Now}, nil
}

// Dir returns the directory holding the cache files.
func (c *FileStore) Dir() string {
	return c.rootDir
}

func (c *FileStore) filenameForKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.rootDir, fmt.Sprintf("%x.json", sum[:]))
}

type fileEntry struct {
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Get reads the entry stored under key.
func (c *FileStore) Get(key string) (Entry, bool) {
	fn := c.filenameForKey(key)

	b, err := os.ReadFile(fn)
	if err != nil {
		return Entry{}, false
	}
	var fe fileEntry
	if err := json.Unmarshal(b, &fe); err != nil || fe.URL != key {
		_ = os.Remove(fn)
		return Entry{}, false
	}
	e := Entry{Body: fe.Body, ExpiresAt: fe.ExpiresAt}
	if e.Expired(c.now()) {
		_ = os.Remove(fn)
		return Entry{}, false
	}
	return e, true
}

// Set writes e under key. Write failures only cost a later refetch and are
// logged.
func (c *FileStore) Set(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn := c.filenameForKey(key)
	tmp := fn + ".tmp"
	b, err := json.Marshal(fileEntry{URL: key, Body: e.Body, ExpiresAt: e.ExpiresAt})
	if err == nil {
		err = os.WriteFile(tmp, b, fs.FileMode(0o644))
	}
	if err == nil {
		err = os.Rename(tmp, fn)
	}
	if err != nil {
		logger.WithComponent(logger.ComponentCipher).Warn("Failed to store player script", map[string]interface{}{
			"url":   key,
			"error": err.Error(),
		})
	}
}
