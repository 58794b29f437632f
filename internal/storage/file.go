// ABOUTME: Durable Store backed by a JSON file in the XDG config directory
// ABOUTME: Re-reads the file on every access so concurrent processes see each other's writes

package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nilmcc/blogctl/internal/apperr"
)

const fileName = "storage.json"

// File is a durable Store persisted as a flat JSON object
type File struct {
	mu        sync.Mutex
	configDir string
}

// NewFile creates a file store rooted at configDir
func NewFile(configDir string) *File {
	return &File{configDir: configDir}
}

// Path returns the location of the backing file
func (f *File) Path() string {
	return filepath.Join(f.configDir, fileName)
}

// Get implements Store. A corrupt file is reported as a persistence error.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set implements Store
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.loadForWrite()
	data[key] = value
	return f.save(data)
}

// Remove implements Store. Removing from a corrupt file rewrites it without the keys.
func (f *File) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.loadForWrite()
	changed := false
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save(data)
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "read storage", err)
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "decode storage", err)
	}
	if data == nil {
		return nil, apperr.New(apperr.KindPersistence, "decode storage", "storage file holds null instead of an object")
	}
	return data, nil
}

// loadForWrite starts fresh when the current file is unreadable
func (f *File) loadForWrite() map[string]string {
	data, err := f.load()
	if err != nil {
		slog.Warn("Discarding unreadable storage file", "path", f.Path(), "error", err)
		return map[string]string{}
	}
	return data
}

func (f *File) save(data map[string]string) error {
	if err := os.MkdirAll(f.configDir, 0700); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "create config dir", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "encode storage", err)
	}

	tmp, err := os.CreateTemp(f.configDir, fileName+".*")
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "write storage", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.KindPersistence, "write storage", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.KindPersistence, "write storage", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.KindPersistence, "write storage", err)
	}
	if err := os.Rename(tmp.Name(), f.Path()); err != nil {
		os.Remove(tmp.Name())
		return apperr.Wrap(apperr.KindPersistence, "write storage", err)
	}
	return nil
}
