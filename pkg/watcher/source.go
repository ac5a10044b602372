package watcher

import "fmt"

// New Select a Source by backend name ("notify" or "fsnotify")
func New(backend string) (Source, error) {
	switch backend {
	case "", "notify":
		return NotifySource{}, nil
	case "fsnotify":
		return FSNotifySource{}, nil
	}
	return nil, fmt.Errorf("unknown watcher backend %q", backend)
}
