// Package frontier holds the per-run crawl frontier and visited set.
//
// Neither type is safe for concurrent use; every traversal run owns its own.
package frontier

import (
	"errors"
)

// ErrEmpty is returned by Pop on an empty queue.
var ErrEmpty = errors.New("frontier is empty")

// Entry is a pending URL and the number of link hops from the seed.
type Entry struct {
	URL   string
	Depth int
}

// Queue is a FIFO of entries. The same URL may be queued more than once;
// duplicates are filtered when popped.
type Queue struct {
	items []Entry
	head  int
}

// NewQueue creates a queue holding the given entries in order.
func NewQueue(initial ...Entry) *Queue {
	q := &Queue{items: make([]Entry, 0, len(initial)+16)}
	for _, e := range initial {
		q.Push(e)
	}
	return q
}

// Push appends e to the tail.
func (q *Queue) Push(e Entry) {
	q.items = append(q.items, e)
}

// Pop removes and returns the head entry.
func (q *Queue) Pop() (Entry, error) {
	if q.head >= len(q.items) {
		return Entry{}, ErrEmpty
	}

	e := q.items[q.head]
	q.items[q.head] = Entry{}
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}

	return e, nil
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// IsEmpty reports whether no entries are pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}
