package watcher

import (
	"path/filepath"
	"sync"

	"github.com/rjeczalik/notify"
	log "github.com/sirupsen/logrus"
)

// NotifySource Watches folders with github.com/rjeczalik/notify
//
// notify drops events silently when its channel is full, so this backend
// never reports ErrEventsLost.
type NotifySource struct{}

type notifySubscription struct {
	raw    chan notify.EventInfo
	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
}

// Subscribe Start watching path, non-recursively, for created files
// carrying extension
func (NotifySource) Subscribe(path, extension string) (Subscription, error) {
	if err := checkFolder(path); err != nil {
		return nil, err
	}

	var s *notifySubscription = &notifySubscription{
		raw:    make(chan notify.EventInfo, bufferSize),
		events: make(chan Event),
		errors: make(chan error),
		done:   make(chan struct{}),
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	// EvalSymlinks because notify reports resolved paths
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	if err := notify.Watch(abs, s.raw, notify.Create); err != nil {
		return nil, err
	}

	go s.run(abs, path, extension)
	return s, nil
}

// run reports events under the folder as the caller named it, since notify
// hands back absolute paths with symlinks resolved
func (s *notifySubscription) run(watched, folder, extension string) {
	defer close(s.events)
	defer close(s.errors)
	for {
		select {
		case <-s.done:
			return
		case ei := <-s.raw:
			if !matches(watched, ei.Path(), extension) {
				log.Tracef("Ignoring event %s for %s", ei.Event(), ei.Path())
				continue
			}
			var name string = filepath.Base(ei.Path())
			select {
			case s.events <- Event{FileName: name, FullPath: filepath.Join(folder, name)}:
			case <-s.done:
				return
			}
		}
	}
}

func (s *notifySubscription) Events() <-chan Event { return s.events }
func (s *notifySubscription) Errors() <-chan error { return s.errors }

// Close Release the watch. Safe to call more than once.
func (s *notifySubscription) Close() error {
	s.once.Do(func() {
		notify.Stop(s.raw)
		close(s.done)
	})
	return nil
}
