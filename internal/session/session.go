// Package session is the application state object. It owns the image
// list, the category store, the hotkey registry, the filter and sort
// selection and the viewer, and it runs every mutation through the
// optimistic save-or-rollback sequence.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pictag/internal/category"
	"pictag/internal/errors"
	"pictag/internal/hotkey"
	"pictag/internal/log"
	"pictag/internal/store"
	"pictag/internal/view"
	"pictag/internal/viewer"
	"pictag/pkg/types"
)

var (
	// ErrViewerClosed is returned by viewer operations with no open image
	ErrViewerClosed = errors.New("no image is open in the viewer")
	// ErrDeleteInFlight rejects a delete while another is running
	ErrDeleteInFlight = errors.New("a delete is already in progress")
	// ErrStaleResult marks an image load superseded by a newer request
	ErrStaleResult = errors.New("image load superseded by a newer request")
)

// Session is safe for concurrent use. State is guarded by mu; saveMu
// serialises persistent mutations from the optimistic update to the end
// of the save or rollback, so reads never wait on persistence.
type Session struct {
	mu     sync.Mutex
	saveMu sync.Mutex

	gateway   store.Gateway
	directory string
	filename  string
	now       func() time.Time
	newID     func() string

	images      []types.Image
	categories  *category.Store
	hotkeys     *hotkey.Registry
	query       view.Query
	suppression viewer.Suppression
	cursor      viewer.Cursor

	requests viewer.Requests
	deleting viewer.Guard

	listeners map[int]Listener
	nextID    int
}

// Option configures a Session
type Option func(*Session)

// WithClock replaces time.Now for assignment timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the uuid generator for new categories and hotkeys
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// WithFilename overrides the store's default file name
func WithFilename(name string) Option {
	return func(s *Session) { s.filename = name }
}

// WithQuery sets the initial filter and sort selection
func WithQuery(q view.Query) Option {
	return func(s *Session) { s.query = q }
}

// New creates a session for directory. Call Open to load its categories.
func New(gateway store.Gateway, directory string, opts ...Option) *Session {
	s := &Session{
		gateway:   gateway,
		directory: directory,
		now:       time.Now,
		newID:     uuid.NewString,
		query:     view.DefaultQuery(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.categories = category.New(category.WithClock(func() time.Time { return s.now() }))
	s.hotkeys = hotkey.New(hotkey.WithIDGenerator(func() string { return s.newID() }))
	return s
}

// Directory returns the image directory the session edits
func (s *Session) Directory() string {
	return s.directory
}

// Open loads the directory's categories, assignments and hotkeys. A
// missing file seeds the default hotkeys and saves them. An unreachable
// store is logged and leaves the session empty.
func (s *Session) Open(ctx context.Context) error {
	logger := log.LogWithFields(log.F("directory", s.directory))

	var pending []Change
	s.saveMu.Lock()
	defer s.releaseSave(&pending)

	doc, err := s.gateway.LoadConfig(ctx, s.directory, s.filename)
	switch {
	case err == nil:
		s.mu.Lock()
		dropped := s.categories.Load(doc.Categories, doc.ImageCategories)
		dropped += s.hotkeys.Load(doc.Hotkeys)
		s.mu.Unlock()
		if dropped > 0 {
			logger.Warnf("Dropped %d invalid entries from the category file", dropped)
		}
		logger.With(log.F("categories", len(doc.Categories)), log.F("hotkeys", len(doc.Hotkeys))).Info("Loaded categories")

	case errors.IsConfigNotFound(err):
		s.mu.Lock()
		s.hotkeys.Restore(hotkey.Defaults(s.newID))
		seeded := s.documentLocked()
		s.mu.Unlock()
		if err := s.gateway.SaveConfig(ctx, s.directory, s.filename, seeded); err != nil {
			log.LogWithError(err).Warn("Failed to write initial category file")
		} else {
			logger.Info("Created category file with default hotkeys")
		}

	case errors.IsTransportUnavailable(err):
		log.LogWithError(err).Warn("Category store unavailable, continuing without saved categories")

	default:
		return errors.Wrap(err, "failed to load categories")
	}

	pending = append(pending, Change{Kind: ChangeCategories}, Change{Kind: ChangeAssignments}, Change{Kind: ChangeHotkeys}, Change{Kind: ChangeView})
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that removes it
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// emit delivers changes; it must be called without mu held
func (s *Session) emit(changes ...Change) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, c := range changes {
		for _, fn := range listeners {
			fn(c)
		}
	}
}

// releaseSave unlocks saveMu, then delivers the changes collected while
// it was held. Listeners may start persistent operations of their own.
func (s *Session) releaseSave(pending *[]Change) {
	s.saveMu.Unlock()
	s.emit(*pending...)
}

// SetImages replaces the image collection
func (s *Session) SetImages(images []types.Image) {
	s.mu.Lock()
	s.images = slices.Clone(images)
	changes := []Change{{Kind: ChangeImages}, {Kind: ChangeView}}
	if s.cursor.IsOpen() && !s.hasImageLocked(s.cursor.Path()) {
		s.closeViewerLocked()
		changes = append(changes, Change{Kind: ChangeViewer})
	}
	s.mu.Unlock()
	s.emit(changes...)
}

// AddImage adds img, replacing the record of an image with the same path
func (s *Session) AddImage(img types.Image) {
	s.mu.Lock()
	if i := s.imageIndexLocked(img.Path); i >= 0 {
		s.images[i] = img
	} else {
		s.images = append(s.images, img)
	}
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeImages, Path: img.Path}, Change{Kind: ChangeView})
}

// RemoveImage drops an image that disappeared from disk, together with
// its assignments. An open viewer moves on as if the image were deleted.
func (s *Session) RemoveImage(ctx context.Context, path string) {
	var pending []Change
	s.saveMu.Lock()
	defer s.releaseSave(&pending)

	s.mu.Lock()
	if s.imageIndexLocked(path) < 0 {
		s.mu.Unlock()
		return
	}
	changes := s.removeImageLocked(path)
	hadAssignments := len(s.categories.Assignments()[path]) > 0
	s.categories.RemoveImage(path)
	doc := s.documentLocked()
	s.mu.Unlock()
	pending = append(pending, changes...)

	if hadAssignments {
		pending = append(pending, Change{Kind: ChangeAssignments, Path: path})
		if err := s.gateway.SaveConfig(ctx, s.directory, s.filename, doc); err != nil {
			log.LogWithError(err).Warn("Failed to save after image removal")
		}
	}
}

// removeImageLocked drops path from the image list and re-homes the
// viewer cursor when it pointed at path
func (s *Session) removeImageLocked(path string) []Change {
	changes := []Change{{Kind: ChangeImages, Path: path}, {Kind: ChangeView}}
	if s.cursor.Path() != path {
		s.images = slices.DeleteFunc(s.images, func(img types.Image) bool { return img.Path == path })
		return changes
	}

	pre := s.viewLocked()
	idx := view.IndexOf(pre, path)
	s.images = slices.DeleteFunc(s.images, func(img types.Image) bool { return img.Path == path })
	if target, ok := viewer.AfterDelete(idx, idx == len(pre)-1, s.viewLocked()); ok {
		s.cursor.Open(target)
	} else {
		s.closeViewerLocked()
	}
	return append(changes, Change{Kind: ChangeViewer, Path: s.cursor.Path()})
}

// Images returns the image collection
func (s *Session) Images() []types.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.images)
}

// View returns the filtered and sorted projection. While refiltering is
// suppressed it is computed from the frozen assignments.
func (s *Session) View() []types.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() []types.Image {
	return view.Compute(s.images, s.suppression.Assignments(s.categories.Assignments()), s.query)
}

// Query returns the filter and sort selection
func (s *Session) Query() view.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Filters returns the filter selection
func (s *Session) Filters() types.FilterOptions {
	return s.Query().Filters
}

// Sort returns the sort selection
func (s *Session) Sort() types.SortOption {
	return s.Query().Sort
}

// SetFilters replaces the filter selection
func (s *Session) SetFilters(f types.FilterOptions) {
	s.mu.Lock()
	s.query.Filters = f
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeView})
}

// SetSort replaces the sort selection
func (s *Session) SetSort(o types.SortOption) {
	s.mu.Lock()
	s.query.Sort = o
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeView})
}

// Categories returns every category definition
func (s *Session) Categories() []types.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Categories()
}

// Category looks up one category
func (s *Session) Category(id string) (types.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Category(id)
}

// AssignmentsFor returns the live assignments of path
func (s *Session) AssignmentsFor(path string) []types.CategoryAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.AssignmentsFor(path)
}

// Hotkeys returns every binding
func (s *Session) Hotkeys() []types.HotkeyConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hotkeys.Hotkeys()
}

// Document returns the persisted form of the session
func (s *Session) Document() *types.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *Session) documentLocked() *types.Document {
	return &types.Document{
		Categories:      s.categories.Categories(),
		ImageCategories: types.EntriesFromMap(s.categories.Assignments()),
		Hotkeys:         s.hotkeys.Hotkeys(),
	}
}

func (s *Session) imageIndexLocked(path string) int {
	return slices.IndexFunc(s.images, func(img types.Image) bool { return img.Path == path })
}

func (s *Session) hasImageLocked(path string) bool {
	return s.imageIndexLocked(path) >= 0
}

// mutation is one optimistic change: apply runs under mu and returns the
// function undoing it, or nil when nothing changed. after runs under mu
// once the save succeeded.
type mutation struct {
	op      string
	apply   func() (undo func(), err error)
	after   func() []Change
	changes []Change
}

// persist applies m, saves, and undoes m when the save fails. Changes
// are delivered once the save is over.
func (s *Session) persist(ctx context.Context, m mutation) (bool, error) {
	var pending []Change
	s.saveMu.Lock()
	defer s.releaseSave(&pending)

	s.mu.Lock()
	undo, err := m.apply()
	if err != nil || undo == nil {
		s.mu.Unlock()
		return false, err
	}
	doc := s.documentLocked()
	s.mu.Unlock()

	if err := s.gateway.SaveConfig(ctx, s.directory, s.filename, doc); err != nil {
		s.mu.Lock()
		undo()
		s.mu.Unlock()

		perr := errors.NewPersistenceError(m.op, true, err)
		log.LogWithError(perr).Error("Save failed, change rolled back")
		pending = append(pending, m.changes...)
		return false, perr
	}

	pending = append(pending, m.changes...)
	if m.after != nil {
		s.mu.Lock()
		pending = append(pending, m.after()...)
		s.mu.Unlock()
	}
	return true, nil
}
