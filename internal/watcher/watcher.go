// Package watcher watches source trees and emits debounced change events for
// files with recognized extensions.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/imyousuf/CodeSentry/internal/discovery"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// Config holds configuration for the file system watcher.
type Config struct {
	Paths []string
	// Extensions limits file events to these extensions. Empty means the
	// discovery defaults.
	Extensions []string
	// Exclude holds gitignore-style patterns for paths to ignore.
	Exclude []string
	Logger  hclog.Logger
}

// Watcher watches file system paths for changes and emits debounced events.
type Watcher struct {
	cfg     Config
	matcher *discovery.Matcher
	log     hclog.Logger
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
}

// New creates a new file system watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	matcher := discovery.NewMatcher(cfg.Paths, cfg.Exclude)
	if err := matcher.Load(); err != nil {
		return nil, err
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = discovery.DefaultExtensions
	}
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	return &Watcher{
		cfg:     cfg,
		matcher: matcher,
		log:     log.Named("watcher"),
	}, nil
}

// Start begins watching configured paths and returns a channel of debounced events.
// The channel is closed when the context is cancelled.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	for _, root := range w.cfg.Paths {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan Event, 100)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == ".git" || (path != root && w.matcher.Match(path)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// wanted reports whether an event on path should be forwarded.
func (w *Watcher) wanted(path string) bool {
	return discovery.HasExtension(path, w.cfg.Extensions) && !w.matcher.Match(path)
}

const debounceWindow = 100 * time.Millisecond

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)

	// Debounce state: the latest event per path and the timer that emits it.
	type pending struct {
		event Event
		timer *time.Timer
	}
	pendingEvents := make(map[string]*pending)
	var mu sync.Mutex

	emit := func(evt Event) {
		select {
		case out <- evt:
		case <-ctx.Done():
		}
	}
	fire := func(path string) func() {
		return func() {
			mu.Lock()
			p := pendingEvents[path]
			delete(pendingEvents, path)
			mu.Unlock()
			if p != nil {
				emit(p.event)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, p := range pendingEvents {
				p.timer.Stop()
			}
			mu.Unlock()
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			// New directories are watched too, unless excluded.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if !w.matcher.Match(fsEvent.Name) {
						_ = w.addRecursive(fsEvent.Name)
					}
					continue
				}
			}
			if !w.wanted(fsEvent.Name) {
				continue
			}

			evt := Event{Path: fsEvent.Name, Op: op, Time: time.Now()}
			mu.Lock()
			if p, exists := pendingEvents[evt.Path]; exists {
				p.timer.Stop()
				p.event = evt
				p.timer = time.AfterFunc(debounceWindow, fire(evt.Path))
			} else {
				pendingEvents[evt.Path] = &pending{
					event: evt,
					timer: time.AfterFunc(debounceWindow, fire(evt.Path)),
				}
			}
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
