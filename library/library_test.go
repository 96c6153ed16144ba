package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"minibrowse/prefs"
)

func TestHistorySeedAndClear(t *testing.T) {
	lib := New(prefs.NewMemory())

	items, err := lib.History()
	require.NoError(t, err)
	require.Len(t, items, 1, "unwritten history returns the sample entry")
	assert.Equal(t, int64(0), items[0].ID)

	require.NoError(t, lib.ClearHistory())
	items, err = lib.History()
	require.NoError(t, err)
	assert.Empty(t, items, "cleared history stays empty")

	raw, _, _ := lib.Store().Get(KeyHistory)
	assert.Equal(t, "[]", raw)
}

func TestAddHistoryAppendsToSeed(t *testing.T) {
	lib := New(prefs.NewMemory())

	require.NoError(t, lib.AddHistory(HistoryItem{ID: 10, URL: "https://a.example", Title: "A"}))

	items, err := lib.History()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://a.example", items[1].URL)
}

func TestEmptyStringTreatedAsUnwritten(t *testing.T) {
	s := prefs.NewMemory()
	require.NoError(t, s.Set(KeyBookmarks, ""))

	items, err := New(s).Bookmarks()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCorruptListIsError(t *testing.T) {
	s := prefs.NewMemory()
	require.NoError(t, s.Set(KeyHistory, "{oops"))

	_, err := New(s).History()
	assert.Error(t, err)
}

func TestBookmarks(t *testing.T) {
	lib := New(prefs.NewMemory())
	require.NoError(t, lib.ClearBookmarks())

	require.NoError(t, lib.AddBookmark(Bookmark{URL: "https://go.dev", Title: "Go"}))
	require.NoError(t, lib.AddBookmark(Bookmark{URL: "https://go.dev", Title: "Go"}))

	items, err := lib.Bookmarks()
	require.NoError(t, err)
	assert.Len(t, items, 2, "duplicates are kept")
}

func TestQuickLinks(t *testing.T) {
	lib := New(prefs.NewMemory())

	links, err := lib.QuickLinks()
	require.NoError(t, err)
	assert.Equal(t, DefaultQuickLinks(), links)

	added := QuickLink{ID: NextQuickLinkID(links), Title: "Go", Link: "https://go.dev", Icon: DefaultIcon}
	assert.Equal(t, int64(7), added.ID)
	require.NoError(t, lib.AddQuickLink(added))

	removed, err := lib.DeleteQuickLink(links[0])
	require.NoError(t, err)
	assert.True(t, removed)

	links, err = lib.QuickLinks()
	require.NoError(t, err)
	require.Len(t, links, 6)
	assert.Equal(t, "Xiaomi", links[0].Title)
	assert.Equal(t, added, links[5])

	// Value equality: same ID but different link does not match.
	removed, err = lib.DeleteQuickLink(QuickLink{ID: 2, Title: "Xiaomi", Link: "https://other", Icon: DefaultIcon})
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNextQuickLinkIDAfterDeletion(t *testing.T) {
	links := []QuickLink{{ID: 1}, {ID: 3}}
	assert.Equal(t, int64(4), NextQuickLinkID(links))
	assert.Equal(t, int64(1), NextQuickLinkID(nil))
}

func TestScalarSettings(t *testing.T) {
	lib := New(prefs.NewMemory())

	enabled, err := lib.QuickLinksEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NoError(t, lib.SetQuickLinksEnabled(false))
	enabled, _ = lib.QuickLinksEnabled()
	assert.False(t, enabled)

	mode, err := lib.DarkMode()
	require.NoError(t, err)
	assert.Equal(t, 0, mode)
	require.NoError(t, lib.SetDarkMode(2))
	mode, _ = lib.DarkMode()
	assert.Equal(t, 2, mode)

	require.NoError(t, lib.SetImageMode(1))
	img, _ := lib.ImageMode()
	assert.Equal(t, 1, img)
}

func TestHistoryKeepsInsertionOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lib := New(prefs.NewMemory())
		if err := lib.ClearHistory(); err != nil {
			t.Fatal(err)
		}

		urls := rapid.SliceOf(rapid.StringMatching(`https://[a-z]{1,8}\.example/[a-z0-9]{0,6}`)).Draw(t, "urls")
		for i, u := range urls {
			if err := lib.AddHistory(HistoryItem{ID: int64(i), URL: u, Title: u}); err != nil {
				t.Fatal(err)
			}
		}

		got, err := lib.History()
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(urls) {
			t.Fatalf("got %d items, want %d", len(got), len(urls))
		}
		for i, u := range urls {
			if got[i].URL != u || got[i].ID != int64(i) {
				t.Fatalf("item %d = %+v, want url %q", i, got[i], u)
			}
		}
	})
}
