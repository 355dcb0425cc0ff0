package session

// ChangeKind says which part of the session changed
type ChangeKind int

const (
	ChangeImages ChangeKind = iota
	ChangeCategories
	ChangeAssignments
	ChangeHotkeys
	ChangeView
	ChangeViewer
	ChangeNotice
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeImages:
		return "images"
	case ChangeCategories:
		return "categories"
	case ChangeAssignments:
		return "assignments"
	case ChangeHotkeys:
		return "hotkeys"
	case ChangeView:
		return "view"
	case ChangeViewer:
		return "viewer"
	case ChangeNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// NoticeKind classifies user-facing notifications
type NoticeKind int

const (
	// NoticeNoMoreImages fires when deleting closed the viewer
	NoticeNoMoreImages NoticeKind = iota
	// NoticePartialFailure reports a failed best-effort step
	NoticePartialFailure
	// NoticeError reports a failed operation
	NoticeError
)

// Notice is a non-blocking notification for the user
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Change is delivered to every subscriber after the session's state
// changed. Path names the affected image when there is one.
type Change struct {
	Kind   ChangeKind
	Path   string
	Notice *Notice
}

// Listener receives changes. Listeners run outside the session's lock and
// may call back into it.
type Listener func(Change)

func notice(kind NoticeKind, msg string, err error) Change {
	return Change{Kind: ChangeNotice, Notice: &Notice{Kind: kind, Message: msg, Err: err}}
}
