package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"minibrowse/config"
)

// KeyMap defines the shell's key bindings.
type KeyMap struct {
	Quit      key.Binding
	Tools     key.Binding
	Address   key.Binding
	Back      key.Binding
	Forward   key.Binding
	Reload    key.Binding
	Home      key.Binding
	ToggleBar key.Binding
	Bookmark  key.Binding

	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Cancel key.Binding
	Next   key.Binding

	// Home surface
	EditLinks   key.Binding
	AddLink     key.Binding
	DeleteLink  key.Binding
	HideLinks   key.Binding
	FocusSearch key.Binding

	// Lists in the tool sheet
	Layout key.Binding
	Clear  key.Binding

	// Dialog answers
	Yes key.Binding
	No  key.Binding
}

// NewKeyMap builds the key map from configured bindings.
func NewKeyMap(kb config.Keybindings) KeyMap {
	bind := func(k, help string, extra ...string) key.Binding {
		keys := append([]string{k}, extra...)
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(k, help))
	}

	return KeyMap{
		Quit:      bind(kb.Quit, "quit", "ctrl+c"),
		Tools:     bind(kb.Tools, "tools"),
		Address:   bind(kb.Address, "address"),
		Back:      bind(kb.Back, "back", "esc"),
		Forward:   bind(kb.Forward, "forward"),
		Reload:    bind(kb.Reload, "reload"),
		Home:      bind(kb.Home, "home"),
		ToggleBar: bind(kb.ToggleBar, "bar"),
		Bookmark:  bind(kb.Bookmark, "bookmark"),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch")),

		EditLinks:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit links")),
		AddLink:     key.NewBinding(key.WithKeys("+", "a"), key.WithHelp("+", "add link")),
		DeleteLink:  key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		HideLinks:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "show/hide links")),
		FocusSearch: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),

		Layout: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "layout")),
		Clear:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),

		Yes: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "yes")),
		No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Address, k.Tools, k.Back, k.Home, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Address, k.Back, k.Forward, k.Reload, k.Home},
		{k.Tools, k.Bookmark, k.ToggleBar, k.Quit},
		{k.EditLinks, k.AddLink, k.DeleteLink, k.HideLinks, k.FocusSearch},
		{k.Layout, k.Clear},
	}
}
