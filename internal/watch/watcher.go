// Package watch follows an image directory on disk and keeps a session's
// image list in step with it.
package watch

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pictag/internal/errors"
	"pictag/internal/log"
)

// FileEvent is a change to one file of the watched directory
type FileEvent struct {
	Path      string
	Timestamp time.Time
	Op        fsnotify.Op
}

// Removed reports whether the file left the directory
func (e FileEvent) Removed() bool {
	return e.Op.Has(fsnotify.Remove) || e.Op.Has(fsnotify.Rename)
}

// Watcher monitors one directory for file changes using fsnotify
type Watcher struct {
	directory string
	filter    func(name string) bool

	events   chan FileEvent
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	mutex   sync.RWMutex
	running bool
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithFilter limits events to files whose name passes fn
func WithFilter(fn func(name string) bool) WatcherOption {
	return func(w *Watcher) { w.filter = fn }
}

// WithBuffer sets the event channel capacity
func WithBuffer(n int) WatcherOption {
	return func(w *Watcher) { w.events = make(chan FileEvent, n) }
}

// New creates a watcher for directory
func New(directory string, opts ...WatcherOption) (*Watcher, error) {
	info, err := os.Stat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("directory not found", directory, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("error accessing directory", directory, errors.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", directory, errors.InvalidPath, nil)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w := &Watcher{
		directory: directory,
		filter:    func(string) bool { return true },
		events:    make(chan FileEvent, 64),
		fsWatcher: fsWatcher,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Directory returns the watched directory
func (w *Watcher) Directory() string {
	return w.directory
}

// Events returns the channel that delivers file events. It is closed by
// Stop.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Start begins watching
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}
	if err := w.fsWatcher.Add(w.directory); err != nil {
		return errors.NewFileError("failed to watch directory", w.directory, errors.FileOperationFailed, err)
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	go w.loop(w.stopChan, w.done)

	log.LogWithFields(log.F("directory", w.directory)).Info("Watching directory")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !w.filter(event.Name) {
		return
	}
	fe := FileEvent{Path: event.Name, Timestamp: time.Now(), Op: event.Op}

	if !fe.Removed() {
		if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
			return
		}
		// the file may already be gone again
		info, err := os.Stat(event.Name)
		if err != nil {
			if !os.IsNotExist(err) {
				log.LogWithFields(log.F("file", event.Name), log.F("error", err)).Error("Error stating file")
			}
			return
		}
		if info.IsDir() {
			return
		}
	}

	// Send non-blockingly so a slow consumer cannot stall fsnotify
	select {
	case w.events <- fe:
	default:
		log.LogWithFields(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
	}
}

// Stop halts watching and closes the event channel
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.running {
		return
	}
	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	<-w.done
	w.running = false
	close(w.events)
	log.Info("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}
