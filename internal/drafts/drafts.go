// ABOUTME: Local post drafts kept in durable storage
// ABOUTME: Autosaved by the editor so unsent work survives restarts

package drafts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/storage"
)

// Draft is an unsent post
type Draft struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary,omitempty"`
	CategoryID  int64     `json:"categoryId,omitempty"`
	TagIDs      []int64   `json:"tagIds,omitempty"`
	Published   bool      `json:"published"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Entry is a draft with its key
type Entry struct {
	Key   string
	Draft Draft
}

// NewPostKey returns a fresh key for a post that does not exist yet
func NewPostKey() string {
	return "new-" + uuid.NewString()
}

// EditKey returns the key for edits to an existing post
func EditKey(postID int64) string {
	return fmt.Sprintf("post-%d", postID)
}

// IsNewPostKey reports whether key was made by NewPostKey
func IsNewPostKey(key string) bool {
	return strings.HasPrefix(key, "new-")
}

// Store keeps drafts under a single storage key
type Store struct {
	mu     sync.Mutex
	store  storage.Store
	now    func() time.Time
	logger *slog.Logger
}

// New creates a draft store
func New(store storage.Store) *Store {
	return &Store{store: store, now: time.Now, logger: slog.Default()}
}

// Save stores d under key, stamping LastUpdated
func (s *Store) Save(key string, d Draft) (Draft, error) {
	if key == "" {
		return Draft{}, apperr.New(apperr.KindValidation, "save draft", "draft key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	d.LastUpdated = s.now().UTC()
	all[key] = d
	return d, s.save(all)
}

// Get returns the draft under key
func (s *Store) Get(key string) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.load()[key]
	return d, ok
}

// Delete removes the draft under key and reports whether it existed
func (s *Store) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	if _, ok := all[key]; !ok {
		return false, nil
	}
	delete(all, key)
	return true, s.save(all)
}

// Clear removes every draft
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Remove(storage.KeyDrafts)
}

// List returns all drafts ordered by key
func (s *Store) List() []Entry {
	s.mu.Lock()
	all := s.load()
	s.mu.Unlock()

	entries := make([]Entry, 0, len(all))
	for k, d := range all {
		entries = append(entries, Entry{Key: k, Draft: d})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// load treats missing or unreadable data as no drafts
func (s *Store) load() map[string]Draft {
	all := map[string]Draft{}
	raw, ok, err := s.store.Get(storage.KeyDrafts)
	if err != nil {
		s.logger.Error("Failed to load drafts", "error", err)
		return all
	}
	if !ok || raw == "" {
		return all
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.logger.Error("Failed to load drafts", "error", err)
		return map[string]Draft{}
	}
	if all == nil {
		return map[string]Draft{}
	}
	return all
}

func (s *Store) save(all map[string]Draft) error {
	data, err := json.Marshal(all)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "save drafts", err)
	}
	if err := s.store.Set(storage.KeyDrafts, string(data)); err != nil {
		s.logger.Error("Failed to save drafts", "error", err)
		return err
	}
	return nil
}
