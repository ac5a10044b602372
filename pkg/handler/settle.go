package handler

import (
	"context"
	"time"

	c "github.com/mproffitt/printagent/pkg/config"
	"github.com/mproffitt/printagent/pkg/queue"
	"github.com/mproffitt/printagent/pkg/watcher"
	log "github.com/sirupsen/logrus"
)

// Settle Holds every creation event back for a fixed delay before queueing it
//
// Each event gets its own timer. Repeated events for the same file are not
// coalesced and each produces its own item.
type Settle struct {
	ctx   context.Context
	delay time.Duration
	queue *queue.Queue
}

// NewSettle Create a settle stage feeding q. Events still waiting when ctx
// is cancelled are dropped.
func NewSettle(ctx context.Context, delay time.Duration, q *queue.Queue) *Settle {
	return &Settle{
		ctx:   ctx,
		delay: delay,
		queue: q,
	}
}

// Schedule Queue the file named by ev once the settle delay has passed
//
// The item is built from the event as received; the file is not checked again.
func (s *Settle) Schedule(ev watcher.Event) {
	time.AfterFunc(s.delay, func() {
		if s.ctx.Err() != nil {
			log.Debugf("Shutting down, not queueing %s", ev.FullPath)
			return
		}
		var item queue.Item = queue.NewItem(ev.FileName, c.NormalisePath(ev.FullPath))
		s.queue.Push(item)
		log.WithField("item", item.ID).Debugf("Enqueued file - %s", item.FileName)
	})
}
