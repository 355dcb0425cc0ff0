package messages

import (
	tea "github.com/charmbracelet/bubbletea"

	"pictag/internal/session"
)

// SessionChangedMsg carries one change notification from the session
type SessionChangedMsg struct {
	Change session.Change
}

// HotkeyResultMsg is the outcome of offering a key to the hotkey
// dispatcher. Key is the original press for the built-in fallback.
type HotkeyResultMsg struct {
	Key     tea.KeyMsg
	Handled bool
	Err     error
}

// ImageLoadedMsg is the result of loading the open image
type ImageLoadedMsg struct {
	Path string
	Data string
	Err  error
}

// OperationDoneMsg reports the end of a session mutation run off the
// update loop
type OperationDoneMsg struct {
	Op  string
	Err error
}
