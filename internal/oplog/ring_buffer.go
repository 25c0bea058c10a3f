package oplog

import (
	"context"
	"sync"
)

// RingBuffer is an in-memory Sink holding the most recent entries. Its
// contents are lost on restart.
type RingBuffer struct {
	mu       sync.Mutex
	entries  []Entry
	next     int
	size     int
	capacity int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RingBuffer{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

func (b *RingBuffer) Append(_ context.Context, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = entry
	b.next = (b.next + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
	return nil
}

func (b *RingBuffer) Recent(_ context.Context, limit int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > b.size {
		limit = b.size
	}
	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (b.next - i + b.capacity) % b.capacity
		out = append(out, b.entries[idx])
	}
	return out, nil
}

// Len returns the number of retained entries
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}
