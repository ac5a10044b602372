package handler

import (
	"context"
	"sync"
	"time"

	"github.com/mproffitt/printagent/pkg/queue"
	log "github.com/sirupsen/logrus"
)

// IdleDelay How long the dispatch loop sleeps when the queue is empty
const IdleDelay = 10 * time.Millisecond

// Dispatcher Drains the queue, starting one worker per item
//
// With maxWorkers of 0 every item gets its own worker immediately.
// Otherwise the loop stops popping while all workers are busy.
type Dispatcher struct {
	queue  *queue.Queue
	handle func(context.Context, queue.Item)
	slots  chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher Create a dispatch loop over q calling handle for each item
func NewDispatcher(q *queue.Queue, handle func(context.Context, queue.Item), maxWorkers int) *Dispatcher {
	var d *Dispatcher = &Dispatcher{
		queue:  q,
		handle: handle,
	}
	if maxWorkers > 0 {
		d.slots = make(chan struct{}, maxWorkers)
	}
	return d
}

// Run Poll the queue until ctx is cancelled
//
// Workers already started are not waited for; see Wait.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info("Waiting for jobs...")
	for {
		if ctx.Err() != nil {
			return
		}

		if d.slots != nil {
			select {
			case d.slots <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}

		item, ok := d.queue.Pop()
		if !ok {
			d.release()
			select {
			case <-ctx.Done():
				return
			case <-time.After(IdleDelay):
			}
			continue
		}

		d.wg.Add(1)
		go func(item queue.Item) {
			defer d.wg.Done()
			defer d.release()
			d.handle(ctx, item)
		}(item)
	}
}

func (d *Dispatcher) release() {
	if d.slots != nil {
		<-d.slots
	}
}

// Wait Block until every started worker has returned or timeout elapses
//
// Return:
//
// - bool true if all workers finished in time
func (d *Dispatcher) Wait(timeout time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return true
	case <-time.After(timeout):
		return false
	}
}
