// Package session handles saving and restoring browser session state.
package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// FileName is the session file inside the config directory.
const FileName = "session.json"

// maxSearches bounds the remembered search box entries.
const maxSearches = 50

// PageState represents a single page in history.
type PageState struct {
	URL     string `json:"url"`
	ScrollY int    `json:"scrollY"`
}

// Buffer represents the browser tab with its history.
type Buffer struct {
	History []PageState `json:"history"` // back stack
	Current PageState   `json:"current"`
	Forward []PageState `json:"forward"` // forward stack
}

// Empty reports whether the buffer has no page to restore.
func (b Buffer) Empty() bool {
	return b.Current.URL == ""
}

// Session represents the complete browser session state.
type Session struct {
	Tab           Buffer    `json:"tab"`
	SearchHistory []string  `json:"searchHistory"`
	SavedAt       time.Time `json:"savedAt"`
}

// AddSearch remembers a search box entry, most recent last, without repeats.
func (s *Session) AddSearch(q string) {
	if q == "" {
		return
	}
	out := s.SearchHistory[:0]
	for _, prev := range s.SearchHistory {
		if prev != q {
			out = append(out, prev)
		}
	}
	out = append(out, q)
	if len(out) > maxSearches {
		out = out[len(out)-maxSearches:]
	}
	s.SearchHistory = out
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore returns a store for dir/session.json.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the session from disk. A missing file yields an empty session.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Save writes the session to disk.
func (s *Store) Save(sess *Session) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	sess.SavedAt = time.Now()
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Clear removes the session file.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
