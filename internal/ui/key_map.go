package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	sort     key.Binding
	toggle   key.Binding
	add      key.Binding
	upvote   key.Binding
	downvote key.Binding
	comment  key.Binding
	remove   key.Binding
	yes      key.Binding
	no       key.Binding
	logout   key.Binding
	reload   key.Binding
	quit     key.Binding

	// form keys
	next   key.Binding
	prev   key.Binding
	signup key.Binding
	submit key.Binding
	back   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		toggle:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "comments")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add movie")),
		upvote:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "vote up")),
		downvote: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "vote down")),
		comment:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		signup: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle sign up")),
		submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.sort, k.toggle},
		{k.add, k.upvote, k.downvote, k.comment},
		{k.remove, k.reload, k.logout, k.quit},
	}
}
