// Package library provides persistent history, bookmark and quick link
// lists for the browser, stored as JSON values in a preference store.
package library

import (
	"fmt"

	json "github.com/goccy/go-json"

	"minibrowse/prefs"
)

// Preference keys.
const (
	KeyHistory           = "history"
	KeyBookmarks         = "bookmarks"
	KeyQuickLinks        = "quick_links"
	KeyQuickLinksEnabled = "quick_links_enabled"
	KeyDarkMode          = "dark_mode"
	KeyImageMode         = "image_mode"
)

// HistoryItem is a visited page.
type HistoryItem struct {
	ID    int64  `json:"id"` // unix millis at visit
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Bookmark is a saved page.
type Bookmark struct {
	ID    int64  `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// QuickLink is a shortcut pinned to the home surface.
type QuickLink struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
	Icon  string `json:"icon"`
}

// DefaultIcon is the icon given to user-added quick links.
const DefaultIcon = "bookmark"

// Seed entries returned before a list has ever been written.
var (
	sampleHistory  = []HistoryItem{{ID: 0, URL: "example URL", Title: "Sample history entry"}}
	sampleBookmark = []Bookmark{{ID: 0, URL: "example URL", Title: "Sample bookmark"}}
)

// DefaultQuickLinks returns the quick links shown before the user edits them.
func DefaultQuickLinks() []QuickLink {
	return []QuickLink{
		{ID: 1, Title: "Bing", Link: "https://www.bing.com/", Icon: DefaultIcon},
		{ID: 2, Title: "Xiaomi", Link: "https://www.mi.com/", Icon: DefaultIcon},
		{ID: 3, Title: "GitHub", Link: "https://github.com/", Icon: DefaultIcon},
		{ID: 4, Title: "DeepSeek", Link: "https://deepseek.com/", Icon: DefaultIcon},
		{ID: 5, Title: "KernelSU", Link: "https://kernelsu.org/", Icon: DefaultIcon},
		{ID: 6, Title: "Coolapk", Link: "https://www.coolapk.com/", Icon: DefaultIcon},
	}
}

// Library reads and writes the browser's lists and settings.
// It holds no state of its own: every call goes to the store.
type Library struct {
	store prefs.Store
}

// New wraps a preference store.
func New(store prefs.Store) *Library {
	return &Library{store: store}
}

// Store returns the underlying preference store.
func (l *Library) Store() prefs.Store {
	return l.store
}

// loadList decodes the list under key. ok is false when the key was never
// written (absent or empty), in which case the caller supplies a seed.
func loadList[T any](s prefs.Store, key string) (items []T, ok bool, err error) {
	raw, present, err := s.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !present || raw == "" {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

func saveList[T any](s prefs.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

func withSeed[T any](items []T, ok bool, err error, seed []T) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]T(nil), seed...), nil
	}
	return items, nil
}

// History returns visited pages, oldest first.
func (l *Library) History() ([]HistoryItem, error) {
	items, ok, err := loadList[HistoryItem](l.store, KeyHistory)
	return withSeed(items, ok, err, sampleHistory)
}

// AddHistory appends a visit.
func (l *Library) AddHistory(item HistoryItem) error {
	items, err := l.History()
	if err != nil {
		return err
	}
	return saveList(l.store, KeyHistory, append(items, item))
}

// ClearHistory replaces the history with an empty list.
func (l *Library) ClearHistory() error {
	return saveList[HistoryItem](l.store, KeyHistory, nil)
}

// Bookmarks returns saved pages, oldest first.
func (l *Library) Bookmarks() ([]Bookmark, error) {
	items, ok, err := loadList[Bookmark](l.store, KeyBookmarks)
	return withSeed(items, ok, err, sampleBookmark)
}

// AddBookmark appends a bookmark. Duplicates are allowed.
func (l *Library) AddBookmark(b Bookmark) error {
	items, err := l.Bookmarks()
	if err != nil {
		return err
	}
	return saveList(l.store, KeyBookmarks, append(items, b))
}

// ClearBookmarks replaces the bookmarks with an empty list.
func (l *Library) ClearBookmarks() error {
	return saveList[Bookmark](l.store, KeyBookmarks, nil)
}

// QuickLinks returns the home shortcuts.
func (l *Library) QuickLinks() ([]QuickLink, error) {
	items, ok, err := loadList[QuickLink](l.store, KeyQuickLinks)
	return withSeed(items, ok, err, DefaultQuickLinks())
}

// AddQuickLink appends a shortcut.
func (l *Library) AddQuickLink(q QuickLink) error {
	items, err := l.QuickLinks()
	if err != nil {
		return err
	}
	return saveList(l.store, KeyQuickLinks, append(items, q))
}

// DeleteQuickLink removes the first shortcut equal to q. The list is written
// back even when nothing matched.
func (l *Library) DeleteQuickLink(q QuickLink) (bool, error) {
	items, err := l.QuickLinks()
	if err != nil {
		return false, err
	}
	removed := false
	for i, it := range items {
		if it == q {
			items = append(items[:i], items[i+1:]...)
			removed = true
			break
		}
	}
	return removed, saveList(l.store, KeyQuickLinks, items)
}

// NextQuickLinkID returns an ID larger than any in links.
func NextQuickLinkID(links []QuickLink) int64 {
	var max int64
	for _, q := range links {
		if q.ID > max {
			max = q.ID
		}
	}
	return max + 1
}

// QuickLinksEnabled reports whether the home surface shows quick links.
func (l *Library) QuickLinksEnabled() (bool, error) {
	return prefs.Bool(l.store, KeyQuickLinksEnabled, true)
}

// SetQuickLinksEnabled persists the quick link visibility switch.
func (l *Library) SetQuickLinksEnabled(v bool) error {
	return prefs.SetBool(l.store, KeyQuickLinksEnabled, v)
}

// DarkMode returns the stored tri-state (0 system, 1 light, 2 dark).
func (l *Library) DarkMode() (int, error) {
	return prefs.Int(l.store, KeyDarkMode, 0)
}

// SetDarkMode persists the dark mode tri-state.
func (l *Library) SetDarkMode(v int) error {
	return prefs.SetInt(l.store, KeyDarkMode, v)
}

// ImageMode returns the stored tri-state (0 show, 1 saver, 2 none).
func (l *Library) ImageMode() (int, error) {
	return prefs.Int(l.store, KeyImageMode, 0)
}

// SetImageMode persists the image mode tri-state.
func (l *Library) SetImageMode(v int) error {
	return prefs.SetInt(l.store, KeyImageMode, v)
}
