package drafts

import (
	"strings"
	"testing"
	"time"

	"github.com/nilmcc/blogctl/internal/storage"
)

func TestSaveGet(t *testing.T) {
	s := New(storage.NewMemory())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	saved, err := s.Save("post-3", Draft{Title: "WIP", Content: "<p>half</p>"})
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !saved.LastUpdated.Equal(fixed) {
		t.Errorf("expected LastUpdated stamped, got %v", saved.LastUpdated)
	}

	got, ok := s.Get("post-3")
	if !ok {
		t.Fatal("expected draft present")
	}
	if got.Title != "WIP" || !got.LastUpdated.Equal(fixed) {
		t.Errorf("unexpected draft %+v", got)
	}
}

func TestSave_RequiresKey(t *testing.T) {
	s := New(storage.NewMemory())
	if _, err := s.Save("", Draft{}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestDelete(t *testing.T) {
	s := New(storage.NewMemory())
	s.Save("a", Draft{Title: "A"})

	existed, err := s.Delete("a")
	if err != nil || !existed {
		t.Fatalf("expected delete of existing draft, got %v %v", existed, err)
	}
	existed, err = s.Delete("a")
	if err != nil || existed {
		t.Errorf("expected second delete to report absence, got %v %v", existed, err)
	}
}

func TestClear(t *testing.T) {
	store := storage.NewMemory()
	s := New(store)
	s.Save("a", Draft{})
	s.Save("b", Draft{})

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(storage.KeyDrafts); ok {
		t.Error("expected drafts key removed")
	}
	if len(s.List()) != 0 {
		t.Error("expected no drafts")
	}
}

func TestList_Sorted(t *testing.T) {
	s := New(storage.NewMemory())
	for _, k := range []string{"post-9", "new-b", "post-1"} {
		s.Save(k, Draft{Title: k})
	}

	entries := s.List()
	want := []string{"new-b", "post-1", "post-9"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Key != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Key)
		}
	}
}

func TestCorruptDraftsAreEmpty(t *testing.T) {
	for _, raw := range []string{"not json", "null"} {
		t.Run(raw, func(t *testing.T) {
			store := storage.NewMemory()
			store.Set(storage.KeyDrafts, raw)
			s := New(store)

			if len(s.List()) != 0 {
				t.Error("expected corrupt drafts to read as empty")
			}
			if _, err := s.Save("a", Draft{Title: "fresh"}); err != nil {
				t.Fatalf("expected save to overwrite corrupt data, got %v", err)
			}
			if d, ok := s.Get("a"); !ok || d.Title != "fresh" {
				t.Errorf("unexpected draft %+v", d)
			}
		})
	}
}

func TestSurvivesRestartWithFileStore(t *testing.T) {
	dir := t.TempDir()
	New(storage.NewFile(dir)).Save(EditKey(4), Draft{Title: "persisted"})

	d, ok := New(storage.NewFile(dir)).Get("post-4")
	if !ok || d.Title != "persisted" {
		t.Errorf("expected draft after restart, got %+v ok=%v", d, ok)
	}
}

func TestKeys(t *testing.T) {
	k := NewPostKey()
	if !strings.HasPrefix(k, "new-") || len(k) != len("new-")+36 {
		t.Errorf("unexpected new post key %q", k)
	}
	if !IsNewPostKey(k) || IsNewPostKey(EditKey(1)) {
		t.Error("IsNewPostKey misclassified keys")
	}
	if NewPostKey() == k {
		t.Error("expected unique keys")
	}
}
