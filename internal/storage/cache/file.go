// Package cache is the device-local fast cache: a small string key/value
// file read and written synchronously.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a string key/value map persisted as one JSON object. Writes go
// to a temp file that is renamed over the original.
type File struct {
	path string

	mu      sync.Mutex
	entries map[string]string
}

// OpenFile loads path. A missing or unreadable file yields an empty cache.
func OpenFile(path string) *File {
	f := &File{path: path, entries: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		return f
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err == nil && entries != nil {
		f.entries = entries
	}
	return f
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	f.entries[key] = value
	if err := f.flush(); err != nil {
		if existed {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	if !existed {
		return nil
	}
	delete(f.entries, key)
	if err := f.flush(); err != nil {
		f.entries[key] = prev
		return err
	}
	return nil
}

func (f *File) flush() error {
	data, err := json.Marshal(f.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}
