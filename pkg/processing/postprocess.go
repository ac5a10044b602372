package processing

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mproffitt/printagent/pkg/queue"
	log "github.com/sirupsen/logrus"
	m "hg.sr.ht/~dchapes/mode"
)

// PrintedSuffix Appended to the name of every file that has been printed
const PrintedSuffix = "_printed"

// ErrSourceMissing The file was moved or deleted before it could be renamed
var ErrSourceMissing = errors.New("source file no longer exists")

// PostProcessor Marks printed files and moves them to the archive folder
type PostProcessor struct {
	Archive string
	mode    *m.Set
}

// NewPostProcessor Create a post processor for the given archive folder
//
// Arguments:
//
// - archive     string The folder printed files are moved into
// - archiveMode string Optional symbolic mode (e.g. "u=rw,go=r") applied after the move
//
// Return:
//
// - *PostProcessor
// - error if archiveMode cannot be parsed
func NewPostProcessor(archive, archiveMode string) (*PostProcessor, error) {
	var p *PostProcessor = &PostProcessor{Archive: archive}
	if archiveMode != "" {
		set, err := m.Parse(archiveMode)
		if err != nil {
			return nil, err
		}
		p.mode = &set
	}
	return p, nil
}

// RenamedPath Where the file lives after the in-place rename
func RenamedPath(item queue.Item) string {
	return filepath.Join(filepath.Dir(item.FullPath), item.FileName+PrintedSuffix)
}

// ArchivedPath Where the file lives once it has been archived
func (p *PostProcessor) ArchivedPath(item queue.Item) string {
	return filepath.Join(p.Archive, item.FileName+PrintedSuffix)
}

// Process Rename the file in place then move it to the archive
//
// Processing stops at the first failing step. A file left renamed but not
// moved is not rolled back.
func (p *PostProcessor) Process(item queue.Item) (err error) {
	if err = p.Rename(item); err != nil {
		return
	}
	return p.Move(item)
}

// Rename Append the printed marker to the file name, in the same folder
func (p *PostProcessor) Rename(item queue.Item) error {
	var dest string = RenamedPath(item)
	if _, err := os.Lstat(item.FullPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, item.FullPath)
	}
	if err := os.Rename(item.FullPath, dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, item.FullPath)
		}
		return fmt.Errorf("rename %s: %w", item.FullPath, err)
	}
	return nil
}

// Move Move the renamed file into the archive, replacing any stale copy
func (p *PostProcessor) Move(item queue.Item) (err error) {
	var (
		source string = RenamedPath(item)
		dest   string = p.ArchivedPath(item)
	)

	if _, err = os.Lstat(dest); err == nil {
		if err = os.Remove(dest); err != nil {
			return fmt.Errorf("remove stale %s: %w", dest, err)
		}
		log.Debugf("File %s already exists. Deleted old.", dest)
	}

	if err = pmove(source, dest); err != nil {
		return fmt.Errorf("move %s: %w", source, err)
	}

	if p.mode != nil {
		if _, _, err = p.mode.Chmod(dest); err != nil {
			return fmt.Errorf("chmod %s: %w", dest, err)
		}
	}
	log.Debugf("File %s moved to %s", item.FileName, dest)
	return nil
}

// pmove renames source to dest, falling back to copy and delete when the
// archive is on another device
func pmove(source, dest string) (err error) {
	err = os.Rename(source, dest)
	var le *os.LinkError
	if err == nil || !errors.As(err, &le) || !errors.Is(le.Err, syscall.EXDEV) {
		return
	}

	if err = pcopy(source, dest); err != nil {
		_ = os.Remove(dest)
		return
	}
	return os.Remove(source)
}

func pcopy(source, dest string) (err error) {
	var (
		r  *os.File
		w  *os.File
		fi os.FileInfo
	)
	if r, err = os.Open(source); err != nil {
		return
	}
	defer r.Close() // ok to ignore error: file was opened read-only.

	if fi, err = r.Stat(); err != nil {
		return
	}
	if w, err = os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm()); err != nil {
		return
	}

	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return
	}
	return w.Close()
}
