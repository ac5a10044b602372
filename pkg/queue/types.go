package queue

import (
	"time"

	"github.com/google/uuid"
)

// Item A single file waiting to be dispatched
//
// FullPath always uses forward slashes.
type Item struct {
	ID       string
	FileName string
	FullPath string
	Created  time.Time
}

// NewItem Create an item for the given file
func NewItem(fileName, fullPath string) Item {
	return Item{
		ID:       uuid.NewString(),
		FileName: fileName,
		FullPath: fullPath,
		Created:  time.Now(),
	}
}
