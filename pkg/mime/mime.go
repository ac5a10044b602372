package mime

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// Details Basic information about a file's detected type
type Details struct {
	Type      string `json:"type"`
	Extension string `json:"extension"`
}

// Is Test whether the file at path has the given type or one of its parents
//
// Return:
//
// - bool     true when the content matches want
// - *Details what was detected
// - error    if the file could not be read
func Is(path, want string) (bool, *Details, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, nil, fmt.Errorf("unable to detect type of %s: %w", path, err)
	}
	var details *Details = &Details{Type: mtype.String(), Extension: mtype.Extension()}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true, details, nil
		}
	}
	return false, details, nil
}
