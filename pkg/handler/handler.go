package handler

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/mproffitt/printagent/pkg/mime"
	p "github.com/mproffitt/printagent/pkg/processing"
	"github.com/mproffitt/printagent/pkg/queue"
	log "github.com/sirupsen/logrus"
)

// Handle Print one item and archive it once printing is confirmed
//
// Every failure is logged here and reported through the outcome; nothing
// is retried. A file that was not printed stays where it is.
//
// Arguments:
//
// - ctx  context.Context No new printing tool is started once ctx is done
// - item queue.Item      The file to print
//
// Return:
//
// - Outcome Whether the printing tool confirmed the file
func (s *Service) Handle(ctx context.Context, item queue.Item) Outcome {
	var logger *log.Entry = log.WithFields(log.Fields{
		"item": item.ID,
		"file": item.FileName,
	})

	logger.Debugf("Handling %s after %s in queue", item.FullPath, time.Since(item.Created).Round(time.Millisecond))

	var folder string = path.Dir(item.FullPath)
	printer, ok := s.config.PrinterFor(folder)
	if !ok {
		logger.Warnf("No printer configured for folder %s. Dispatching without one", folder)
	}

	if want := s.config.RequireMimeType; want != "" {
		matched, details, err := mime.Is(item.FullPath, want)
		if err != nil {
			logger.Warnf("File: %s not printed - %s", item.FileName, err)
			return Outcome{}
		}
		if !matched {
			logger.Warnf("File: %s not printed - content is %s, not %s", item.FileName, details.Type, want)
			return Outcome{}
		}
		logger.Debugf("Content of %s detected as %s", item.FileName, details.Type)
	}

	logger.Debugf("Dispatching %s to printer '%s'", item.FullPath, printer)
	if err := s.printer.Dispatch(ctx, item.FullPath, printer, s.settings.DispatchTimeout); err != nil {
		logger.Warnf("File: %s not printed - %s", item.FileName, err)
		s.notifier.Notify(fmt.Sprintf("%s was not printed: %s", item.FileName, err))
		return Outcome{}
	}
	logger.Infof("File: %s printed at printer: %s", item.FullPath, printer)

	if err := s.post.Process(item); err != nil {
		if errors.Is(err, p.ErrSourceMissing) {
			logger.Warnf("Printed file %s was moved or deleted before it could be archived", item.FullPath)
		} else {
			logger.Warnf("Unable to archive %s - %s", item.FullPath, err)
		}
		return Outcome{Printed: true}
	}
	logger.Infof("Archived %s to %s", item.FileName, s.post.ArchivedPath(item))
	return Outcome{Printed: true}
}
