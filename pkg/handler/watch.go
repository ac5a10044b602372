package handler

import (
	"errors"
	"fmt"

	"github.com/mproffitt/printagent/pkg/watcher"
	log "github.com/sirupsen/logrus"
)

// watchFolders Subscribe to every configured folder
//
// A folder that cannot be watched is logged and skipped. It fails only
// when no folder at all could be watched.
func (s *Service) watchFolders(settle *Settle) (watches []*watch, err error) {
	watches = make([]*watch, 0, len(s.config.Folders))
	for _, f := range s.config.Folders {
		sub, err := s.source.Subscribe(f.Path, s.config.Extension)
		if err != nil {
			log.Errorf("Failed to set up watch for path %s - %s", f.Path, err)
			continue
		}
		var w *watch = &watch{
			folder:   f.Path,
			sub:      sub,
			complete: make(chan struct{}),
		}
		go watchLocation(w, settle)
		watches = append(watches, w)
		log.Infof("Added folder %s to tracked folders (printer '%s')", f.Path, f.Printer)
	}

	if len(watches) == 0 {
		return nil, fmt.Errorf("%w: none of the %d configured folders could be watched", watcher.ErrFolderNotFound, len(s.config.Folders))
	}
	return watches, nil
}

// watchLocation Forward creation events for one folder to the settle stage
// until the subscription is closed
func watchLocation(w *watch, settle *Settle) {
	defer close(w.complete)
	var (
		events = w.sub.Events()
		errs   = w.sub.Errors()
	)
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			log.Debugf("File %s created in %s", ev.FileName, w.folder)
			settle.Schedule(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Errorf("The watcher for %s has detected an error - %s", w.folder, err)
			if errors.Is(err, watcher.ErrEventsLost) {
				log.Errorf("Lost the watcher subscription for %s. Events may no longer be delivered until restart", w.folder)
			}
		}
	}
	log.Debugf("Stopped listening to %s", w.folder)
}

func (w *watch) close() {
	if err := w.sub.Close(); err != nil {
		log.Warnf("Unable to release watch on %s - %s", w.folder, err)
	}
	<-w.complete
}
