package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func checkFolder(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrFolderNotFound, path)
	}
	return nil
}

// matches Reports whether name sits directly in folder and carries the extension
func matches(folder, name, extension string) bool {
	if filepath.Clean(filepath.Dir(name)) != filepath.Clean(folder) {
		return false
	}
	return extension == "" || strings.EqualFold(filepath.Ext(name), extension)
}
