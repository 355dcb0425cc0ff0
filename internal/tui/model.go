// Package tui is the terminal front end: a gallery of the filtered view
// and a single-image viewer, both driven by the session.
package tui

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pictag/internal/config"
	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/internal/session"
	"pictag/internal/tui/common"
	"pictag/internal/tui/components"
	"pictag/internal/tui/messages"
	"pictag/internal/tui/styles"
	"pictag/internal/tui/views"
	"pictag/internal/view"
	"pictag/pkg/types"
)

const changeBuffer = 256

type Model struct {
	ctx     context.Context
	session *session.Session

	// Core state
	mode     common.Mode
	images   []types.Image
	cursor   int
	loaded   common.LoadedImage
	showHelp bool
	width    int
	height   int

	keys   KeyMap
	help   help.Model
	styles styles.Styles
	status *components.StatusBar

	changes     chan session.Change
	unsubscribe func()

	// notices are queued apart from changes and never dropped
	noticeMu sync.Mutex
	notices  []session.Change
	wake     chan struct{}
}

// New builds the model for an opened session and subscribes to its
// changes. Call Close when the program ends.
func New(ctx context.Context, sess *session.Session, theme config.Theme) *Model {
	st := styles.New(theme)
	m := &Model{
		ctx:     ctx,
		session: sess,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  st,
		status:  components.NewStatusBar(st.Info, st.Error),
		changes: make(chan session.Change, changeBuffer),
		wake:    make(chan struct{}, 1),
	}
	m.unsubscribe = sess.Subscribe(m.receive)
	m.refresh()
	return m
}

// Close detaches the model from the session
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Run starts the program and blocks until the user quits
func Run(ctx context.Context, sess *session.Session, theme config.Theme) error {
	m := New(ctx, sess, theme)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "terminal UI failed")
	}
	return nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForChange()}
	if m.mode == common.Viewer {
		cmds = append(cmds, m.loadImage())
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.dispatch(msg)

	case messages.HotkeyResultMsg:
		if msg.Err != nil {
			m.status.SetError(msg.Err.Error())
		}
		if !msg.Handled {
			return m.handleBuiltin(msg.Key)
		}
		m.refresh()
		return m, nil

	case messages.SessionChangedMsg:
		cmd := m.applyChange(msg.Change)
		return m, tea.Batch(cmd, m.waitForChange())

	case messages.ImageLoadedMsg:
		return m, m.imageLoaded(msg)

	case messages.OperationDoneMsg:
		if msg.Err != nil {
			log.LogWithError(msg.Err).Debugf("%s failed", msg.Op)
			m.status.SetError(msg.Err.Error())
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}
	return m, nil
}

// dispatch offers the key to the user's hotkeys off the update loop
func (m *Model) dispatch(msg tea.KeyMsg) tea.Cmd {
	event := toEvent(msg)
	if event.Key == "" {
		return func() tea.Msg { return messages.HotkeyResultMsg{Key: msg} }
	}
	return func() tea.Msg {
		handled, err := m.session.HandleKey(m.ctx, event)
		return messages.HotkeyResultMsg{Key: msg, Handled: handled, Err: err}
	}
}

func (m *Model) handleBuiltin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	if m.mode == common.Viewer {
		return m.handleViewerKeys(msg)
	}
	return m.handleGalleryKeys(msg)
}

func (m *Model) handleViewerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.session.CloseViewer()
	case key.Matches(msg, m.keys.Next):
		if _, moved := m.session.Next(); !moved {
			m.status.SetText("Last image")
		}
	case key.Matches(msg, m.keys.Prev):
		if _, moved := m.session.Previous(); !moved {
			m.status.SetText("First image")
		}
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteCurrent()
	}
	m.refresh()
	return m, nil
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.images)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if len(m.images) > 0 && m.session.OpenViewer(m.images[m.cursor].Path) {
			m.refresh()
		}
	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter()
	case key.Matches(msg, m.keys.Sort):
		m.cycleSort()
	case key.Matches(msg, m.keys.Reverse):
		o := m.session.Sort()
		if o.Direction == types.Descending {
			o.Direction = types.Ascending
		} else {
			o.Direction = types.Descending
		}
		m.session.SetSort(o)
		m.refresh()
	}
	return m, nil
}

// cycleFilter steps through all, uncategorized and each category
func (m *Model) cycleFilter() {
	options := []string{types.CategoryFilterAll, types.CategoryFilterUncategorized}
	for _, c := range m.session.Categories() {
		options = append(options, c.ID)
	}
	f := m.session.Filters()
	i := slices.Index(options, f.CategoryID)
	f.CategoryID = options[(i+1)%len(options)]
	m.session.SetFilters(f)
	m.cursor = 0
	m.refresh()
}

func (m *Model) cycleSort() {
	fields := types.SortFields()
	o := m.session.Sort()
	i := slices.Index(fields, o.Field)
	o.Field = fields[(i+1)%len(fields)]
	m.session.SetSort(o)
	m.refresh()
}

func (m *Model) deleteCurrent() tea.Cmd {
	return func() tea.Msg {
		err := m.session.DeleteCurrentAndAdvance(m.ctx)
		return messages.OperationDoneMsg{Op: "delete", Err: err}
	}
}

func (m *Model) applyChange(c session.Change) tea.Cmd {
	if c.Kind == session.ChangeNotice && c.Notice != nil {
		switch c.Notice.Kind {
		case session.NoticeNoMoreImages:
			m.status.SetText(c.Notice.Message)
		default:
			m.status.SetError(c.Notice.Message)
		}
	}
	m.refresh()

	if c.Kind == session.ChangeViewer && m.mode == common.Viewer && m.loaded.Path != m.session.Current() {
		return m.loadImage()
	}
	return nil
}

func (m *Model) loadImage() tea.Cmd {
	spin := m.status.SetLoading(true)
	load := func() tea.Msg {
		path, data, err := m.session.LoadCurrentImage(m.ctx)
		return messages.ImageLoadedMsg{Path: path, Data: data, Err: err}
	}
	return tea.Batch(spin, load)
}

func (m *Model) imageLoaded(msg messages.ImageLoadedMsg) tea.Cmd {
	if errors.Is(msg.Err, session.ErrStaleResult) {
		if m.mode != common.Viewer {
			m.status.SetLoading(false)
		}
		return nil
	}
	m.status.SetLoading(false)
	if msg.Err != nil {
		if !errors.Is(msg.Err, session.ErrViewerClosed) {
			m.status.SetError(msg.Err.Error())
		}
		return nil
	}
	m.loaded = common.LoadedImage{
		Path:  msg.Path,
		MIME:  dataURLMIME(msg.Data),
		Bytes: len(msg.Data),
	}
	return nil
}

// refresh re-reads the view and the viewer from the session
func (m *Model) refresh() {
	m.images = m.session.View()
	if current := m.session.Current(); current != "" {
		m.mode = common.Viewer
		if i := view.IndexOf(m.images, current); i >= 0 {
			m.cursor = i
		}
	} else {
		m.mode = common.Gallery
	}
	m.keys.viewer = m.mode == common.Viewer
	m.cursor = max(0, min(m.cursor, len(m.images)-1))
}

// receive queues a session change for the update loop. Other changes
// only trigger a refresh and may be dropped when the queue is full.
func (m *Model) receive(c session.Change) {
	if c.Kind == session.ChangeNotice {
		m.noticeMu.Lock()
		m.notices = append(m.notices, c)
		m.noticeMu.Unlock()
		select {
		case m.wake <- struct{}{}:
		default:
		}
		return
	}
	select {
	case m.changes <- c:
	default:
		log.LogWithFields(log.F("kind", c.Kind.String())).Warn("Dropped session change, UI queue full")
	}
}

func (m *Model) popNotice() (session.Change, bool) {
	m.noticeMu.Lock()
	defer m.noticeMu.Unlock()
	if len(m.notices) == 0 {
		return session.Change{}, false
	}
	c := m.notices[0]
	m.notices = m.notices[1:]
	return c, true
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		for {
			if c, ok := m.popNotice(); ok {
				return messages.SessionChangedMsg{Change: c}
			}
			select {
			case c := <-m.changes:
				return messages.SessionChangedMsg{Change: c}
			case <-m.wake:
			case <-m.ctx.Done():
				return nil
			}
		}
	}
}

func dataURLMIME(data string) string {
	rest, ok := strings.CutPrefix(data, "data:")
	if !ok {
		return ""
	}
	mime, _, _ := strings.Cut(rest, ";")
	return mime
}

// ModelReader implementation

func (m *Model) Mode() common.Mode {
	return m.mode
}

func (m *Model) Directory() string {
	return m.session.Directory()
}

func (m *Model) Images() []types.Image {
	return m.images
}

func (m *Model) Cursor() int {
	return m.cursor
}

func (m *Model) CurrentImage() (types.Image, bool) {
	current := m.session.Current()
	if current == "" {
		return types.Image{}, false
	}
	if i := view.IndexOf(m.images, current); i >= 0 {
		return m.images[i], true
	}
	for _, img := range m.session.Images() {
		if img.Path == current {
			return img, true
		}
	}
	return types.Image{Path: current}, true
}

// CategoriesOf returns the categories assigned to path in store order
func (m *Model) CategoriesOf(path string) []types.Category {
	assigned := m.session.AssignmentsFor(path)
	if len(assigned) == 0 {
		return nil
	}
	var out []types.Category
	for _, c := range m.session.Categories() {
		for _, a := range assigned {
			if a.CategoryID == c.ID {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (m *Model) CategoryName(id string) string {
	if c, ok := m.session.Category(id); ok {
		return c.Name
	}
	return id
}

func (m *Model) Query() view.Query {
	return m.session.Query()
}

func (m *Model) Suppressed() bool {
	return m.session.Suppressed()
}

func (m *Model) Loaded() common.LoadedImage {
	return m.loaded
}

func (m *Model) StatusLine() string {
	return m.status.View()
}

// StatusText returns the status message without styling
func (m *Model) StatusText() string {
	return m.status.Text()
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) HelpView() string {
	return m.help.View(m.keys)
}

func (m *Model) Styles() styles.Styles {
	return m.styles
}

func (m *Model) Width() int {
	return m.width
}

func (m *Model) Height() int {
	return m.height
}
