package state

// Tool-sheet action IDs.
const (
	ActionDownloads = iota + 1
	ActionShare
	ActionDesktop
	ActionHistory
	ActionDarkMode
	ActionShortcut
	ActionAddBookmark
	ActionFullscreen
	ActionBookmarks
	ActionImageMode
	ActionResources
)

// QuickSetItem describes one tool-sheet action. Enabled doubles as the "on"
// state for Switch items.
type QuickSetItem struct {
	ID      int
	Icon    string
	Title   string
	Enabled bool
	Switch  bool
}

// QuickSet returns the action grid for the current state.
func (b *Browser) QuickSet() []QuickSetItem {
	onPage := b.Mode == ModeWeb
	return []QuickSetItem{
		{ID: ActionDownloads, Icon: "⇩", Title: "Downloads", Enabled: true},
		{ID: ActionShare, Icon: "⇪", Title: "Share", Enabled: onPage},
		{ID: ActionDesktop, Icon: "▭", Title: "Desktop", Enabled: b.AccessMode == AccessDesktop, Switch: true},
		{ID: ActionHistory, Icon: "↺", Title: "History", Enabled: true},
		{ID: ActionDarkMode, Icon: "◐", Title: b.DarkMode.String(), Enabled: true},
		{ID: ActionShortcut, Icon: "⌂", Title: "Add to desktop", Enabled: onPage},
		{ID: ActionAddBookmark, Icon: "☆", Title: "Add bookmark", Enabled: onPage},
		{ID: ActionFullscreen, Icon: "⛶", Title: "Fullscreen", Enabled: b.Fullscreen, Switch: true},
		{ID: ActionBookmarks, Icon: "★", Title: "Bookmarks", Enabled: true},
		{ID: ActionImageMode, Icon: "▨", Title: b.ImageMode.String(), Enabled: true},
		{ID: ActionResources, Icon: "☰", Title: "Resources", Enabled: true},
	}
}

// Actionable reports whether the item can be triggered. Switch items are
// always actionable; their Enabled flag only shows on/off.
func (q QuickSetItem) Actionable() bool {
	return q.Switch || q.Enabled
}
