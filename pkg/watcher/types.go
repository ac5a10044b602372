package watcher

import "errors"

var (
	// ErrFolderNotFound The folder to watch does not exist or is not a directory
	ErrFolderNotFound = errors.New("folder not found")

	// ErrEventsLost The OS notification buffer overflowed. Events were
	// dropped and the subscription may no longer deliver anything.
	ErrEventsLost = errors.New("file system events lost")
)

// Event A file created directly inside a watched folder
type Event struct {
	FileName string
	FullPath string
}

// Subscription A live watch on one folder
//
// Events and Errors are closed once Close has released the watch.
type Subscription interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// Source Establishes subscriptions for newly created files
type Source interface {
	Subscribe(path, extension string) (Subscription, error)
}

// bufferSize How many raw notifications are held before the backend drops them
const bufferSize = 1024
