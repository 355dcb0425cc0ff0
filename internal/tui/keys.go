package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pictag/internal/hotkey"
)

// KeyMap holds the built-in bindings. User hotkeys are tried first; these
// only run for keys the hotkey registry does not handle.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Close   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Delete  key.Binding
	Filter  key.Binding
	Sort    key.Binding
	Reverse key.Binding
	Help    key.Binding
	Quit    key.Binding

	viewer bool
}

// DefaultKeyMap returns the built-in bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", "previous"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "x"),
			key.WithHelp("del/x", "trash"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	if k.viewer {
		return []key.Binding{k.Prev, k.Next, k.Delete, k.Close, k.Help}
	}
	return []key.Binding{k.Up, k.Down, k.Open, k.Filter, k.Sort, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	if k.viewer {
		return [][]key.Binding{
			{k.Prev, k.Next},
			{k.Delete, k.Close},
			{k.Help, k.Quit},
		}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Filter, k.Sort, k.Reverse},
		{k.Help, k.Quit},
	}
}

// namedKeys maps terminal key types to the names hotkeys are stored with
var namedKeys = map[tea.KeyType]hotkey.Event{
	tea.KeyUp:         {Key: "ArrowUp"},
	tea.KeyDown:       {Key: "ArrowDown"},
	tea.KeyLeft:       {Key: "ArrowLeft"},
	tea.KeyRight:      {Key: "ArrowRight"},
	tea.KeyShiftUp:    {Key: "ArrowUp", Shift: true},
	tea.KeyShiftDown:  {Key: "ArrowDown", Shift: true},
	tea.KeyShiftLeft:  {Key: "ArrowLeft", Shift: true},
	tea.KeyShiftRight: {Key: "ArrowRight", Shift: true},
	tea.KeyCtrlUp:     {Key: "ArrowUp", Ctrl: true},
	tea.KeyCtrlDown:   {Key: "ArrowDown", Ctrl: true},
	tea.KeyCtrlLeft:   {Key: "ArrowLeft", Ctrl: true},
	tea.KeyCtrlRight:  {Key: "ArrowRight", Ctrl: true},
	tea.KeyEnter:      {Key: "Enter"},
	tea.KeyEscape:     {Key: "Escape"},
	tea.KeyTab:        {Key: "Tab"},
	tea.KeyShiftTab:   {Key: "Tab", Shift: true},
	tea.KeyDelete:     {Key: "Delete"},
	tea.KeyBackspace:  {Key: "Backspace"},
	tea.KeyHome:       {Key: "Home"},
	tea.KeyEnd:        {Key: "End"},
	tea.KeyPgUp:       {Key: "PageUp"},
	tea.KeyPgDown:     {Key: "PageDown"},
	tea.KeySpace:      {Key: " "},
}

// toEvent converts a terminal key press into a hotkey event. Terminals
// cannot report Cmd, so Ctrl stands in for both.
func toEvent(msg tea.KeyMsg) hotkey.Event {
	if e, ok := namedKeys[msg.Type]; ok {
		e.Alt = msg.Alt
		return e
	}

	if msg.Type == tea.KeyRunes {
		if len(msg.Runes) != 1 {
			return hotkey.Event{}
		}
		r := msg.Runes[0]
		return hotkey.Event{
			Key:   string(r),
			Alt:   msg.Alt,
			Shift: unicode.IsUpper(r),
		}
	}

	s := strings.TrimPrefix(msg.String(), "alt+")
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok && len(rest) == 1 {
		return hotkey.Event{Key: rest, Ctrl: true, Alt: msg.Alt}
	}
	return hotkey.Event{}
}
