package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Back     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Search   key.Binding
	Status   key.Binding
	Priority key.Binding
	Sort     key.Binding
	Reverse  key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Tasks    key.Binding
	Settings key.Binding
	Users    key.Binding
	Stats    key.Binding
	Logout   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	NextPage: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Status:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status")),
	Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority")),
	Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
	Reverse:  key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "reverse")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Tasks:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "tasks")),
	Settings: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "settings")),
	Users:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "users")),
	Stats:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "stats")),
	Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// bindings implements help.KeyMap for one screen.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding { return b }

func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }
