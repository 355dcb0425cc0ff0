package watch

import (
	"context"
	"sync"
	"time"

	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/pkg/types"
)

// Sink receives the image changes found on disk
type Sink interface {
	AddImage(img types.Image)
	RemoveImage(ctx context.Context, path string)
}

// Statter reads the record of one image file and decides whether it
// belongs in the collection
type Statter interface {
	Stat(path string) (types.Image, error)
	Admits(img types.Image) bool
}

// Status is a snapshot of a Syncer's activity
type Status struct {
	Running      bool
	Directory    string
	LastActivity time.Time
	Added        int
	Removed      int
}

// Syncer applies a Watcher's events to a Sink
type Syncer struct {
	watcher *Watcher
	stat    Statter
	sink    Sink

	mutex        sync.RWMutex
	running      bool
	lastActivity time.Time
	added        int
	removed      int
	callback     func(FileEvent, error)
	done         chan struct{}
}

// NewSyncer wires watcher events through stat into sink
func NewSyncer(watcher *Watcher, stat Statter, sink Sink) *Syncer {
	return &Syncer{watcher: watcher, stat: stat, sink: sink}
}

// SetCallback sets a function called after each event was applied
func (s *Syncer) SetCallback(cb func(FileEvent, error)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.callback = cb
}

// Start starts the watcher and processes its events until ctx ends or
// Stop is called
func (s *Syncer) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.running {
		s.mutex.Unlock()
		return errors.New("syncer is already running")
	}
	if err := s.watcher.Start(); err != nil {
		s.mutex.Unlock()
		return err
	}
	s.running = true
	s.done = make(chan struct{})
	done := s.done
	s.mutex.Unlock()

	go func() {
		defer close(done)
		s.processEvents(ctx)
	}()
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()
	return nil
}

// Stop halts the watcher and waits for pending events to be applied
func (s *Syncer) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.running = false
	done := s.done
	s.mutex.Unlock()

	s.watcher.Stop()
	<-done
}

// Status returns the current activity counters
func (s *Syncer) Status() Status {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return Status{
		Running:      s.running,
		Directory:    s.watcher.Directory(),
		LastActivity: s.lastActivity,
		Added:        s.added,
		Removed:      s.removed,
	}
}

func (s *Syncer) processEvents(ctx context.Context) {
	for event := range s.watcher.Events() {
		err := s.Apply(ctx, event)

		s.mutex.RLock()
		cb := s.callback
		s.mutex.RUnlock()
		if cb != nil {
			cb(event, err)
		}
	}
}

// Apply hands one event to the sink. A file below the scanner's size
// floor is treated as removed, so a shrunken image leaves the collection.
func (s *Syncer) Apply(ctx context.Context, event FileEvent) error {
	logger := log.LogWithFields(log.F("file", event.Path), log.F("op", event.Op.String()))

	if event.Removed() {
		s.sink.RemoveImage(ctx, event.Path)
		s.record(event, false)
		logger.Debug("Image removed from directory")
		return nil
	}

	img, err := s.stat.Stat(event.Path)
	if err != nil {
		if errors.IsFileNotFound(err) {
			return nil
		}
		logger.With(log.F("error", err.Error())).Warn("Failed to read new image")
		return err
	}
	if !s.stat.Admits(img) {
		s.sink.RemoveImage(ctx, event.Path)
		logger.With(log.F("size", img.Size)).Debug("Image below the size floor, not listed")
		return nil
	}
	s.sink.AddImage(img)
	s.record(event, true)
	logger.Debug("Image added to directory")
	return nil
}

func (s *Syncer) record(event FileEvent, added bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActivity = event.Timestamp
	if added {
		s.added++
	} else {
		s.removed++
	}
}
