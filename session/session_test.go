package session

import (
	"fmt"
	"os"
	"testing"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	s, err := NewStore(t.TempDir()).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.Tab.Empty() || len(s.SearchHistory) != 0 {
		t.Errorf("expected empty session, got %+v", s)
	}
}

func TestSaveLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	in := &Session{
		Tab: Buffer{
			History: []PageState{{URL: "https://a.example", ScrollY: 3}},
			Current: PageState{URL: "https://b.example", ScrollY: 12},
			Forward: []PageState{{URL: "https://c.example"}},
		},
		SearchHistory: []string{"go"},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Tab.Current != in.Tab.Current {
		t.Errorf("Current = %+v", out.Tab.Current)
	}
	if len(out.Tab.History) != 1 || out.Tab.History[0].ScrollY != 3 {
		t.Errorf("History = %+v", out.Tab.History)
	}
	if len(out.Tab.Forward) != 1 {
		t.Errorf("Forward = %+v", out.Tab.Forward)
	}
	if out.SavedAt.IsZero() {
		t.Error("SavedAt not set")
	}
}

func TestLoadCorrupt(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); err == nil {
		t.Error("expected error for corrupt session")
	}
}

func TestClear(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Clear(); err != nil {
		t.Errorf("Clear on missing file: %v", err)
	}
	if err := store.Save(&Session{}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("session file still present")
	}
}

func TestAddSearch(t *testing.T) {
	var s Session
	s.AddSearch("a")
	s.AddSearch("b")
	s.AddSearch("a")
	s.AddSearch("")

	if fmt.Sprint(s.SearchHistory) != "[b a]" {
		t.Errorf("SearchHistory = %v", s.SearchHistory)
	}

	for i := 0; i < maxSearches+5; i++ {
		s.AddSearch(fmt.Sprint(i))
	}
	if len(s.SearchHistory) != maxSearches {
		t.Errorf("len = %d", len(s.SearchHistory))
	}
	if last := s.SearchHistory[len(s.SearchHistory)-1]; last != fmt.Sprint(maxSearches+4) {
		t.Errorf("last = %q", last)
	}
}
