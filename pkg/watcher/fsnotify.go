package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// FSNotifySource Watches folders with github.com/fsnotify/fsnotify
//
// Queue overflows are surfaced on Errors as ErrEventsLost.
type FSNotifySource struct{}

type fsnotifySubscription struct {
	fw     *fsnotify.Watcher
	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
	err    error
}

// Subscribe Start watching path, non-recursively, for created files
// carrying extension
func (FSNotifySource) Subscribe(path, extension string) (Subscription, error) {
	if err := checkFolder(path); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, err
	}

	var s *fsnotifySubscription = &fsnotifySubscription{
		fw:     fw,
		events: make(chan Event),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go s.run(path, extension)
	return s, nil
}

func (s *fsnotifySubscription) run(folder, extension string) {
	defer close(s.events)
	defer close(s.errors)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.fw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != fsnotify.Create || !matches(folder, ev.Name, extension) {
				log.Tracef("Ignoring event %s", ev)
				continue
			}
			select {
			case s.events <- Event{FileName: filepath.Base(ev.Name), FullPath: ev.Name}:
			case <-s.done:
				return
			}
		case err, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				err = fmt.Errorf("%w: %s", ErrEventsLost, err)
			}
			select {
			case s.errors <- err:
			case <-s.done:
				return
			}
		}
	}
}

func (s *fsnotifySubscription) Events() <-chan Event { return s.events }
func (s *fsnotifySubscription) Errors() <-chan error { return s.errors }

// Close Release the watch. Safe to call more than once.
func (s *fsnotifySubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.fw.Close()
	})
	return s.err
}
