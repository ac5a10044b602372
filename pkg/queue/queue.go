package queue

import "sync"

// Queue An unbounded, first-in-first-out queue of items safe for any
// number of concurrent producers and consumers
type Queue struct {
	mu    sync.Mutex
	items []Item
	head  int
}

// New Create an empty queue
func New() *Queue {
	return &Queue{
		items: make([]Item, 0),
	}
}

// Push Append an item to the back of the queue
func (q *Queue) Push(item Item) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Pop Remove the item at the front of the queue
//
// Never blocks. Returns false when the queue is empty.
func (q *Queue) Pop() (item Item, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return
	}
	item = q.items[q.head]
	q.items[q.head] = Item{}
	q.head++

	// reclaim the consumed prefix once it dominates the backing array
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return item, true
}

// Len The number of items waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
