package web

import "sync"

// DefaultBufferSize is used when NewBuffer gets a non-positive size.
const DefaultBufferSize = 1000

// Buffer keeps the last maxSize events of a run so a dashboard opened mid-run
// can load what it missed. safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	ring    []Event
	maxSize int
	head    int // index of the oldest event
	size    int
}

// NewBuffer makes a buffer holding up to maxSize events.
func NewBuffer(maxSize int) *Buffer {
	if maxSize <= 0 {
		maxSize = DefaultBufferSize
	}
	return &Buffer{ring: make([]Event, maxSize), maxSize: maxSize}
}

// Add stores e, dropping the oldest event once the buffer is full.
func (b *Buffer) Add(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size < b.maxSize {
		b.ring[(b.head+b.size)%b.maxSize] = e
		b.size++
		return
	}
	b.ring[b.head] = e
	b.head = (b.head + 1) % b.maxSize
}

// All returns a copy of the stored events, oldest first, or nil when empty.
func (b *Buffer) All() []Event {
	return b.collect(func(Event) bool { return true })
}

// ByCase returns the stored events of one case, oldest first.
func (b *Buffer) ByCase(name string) []Event {
	return b.collect(func(e Event) bool { return e.Case == name })
}

func (b *Buffer) collect(keep func(Event) bool) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var res []Event
	for i := range b.size {
		if e := b.ring[(b.head+i)%b.maxSize]; keep(e) {
			res = append(res, e)
		}
	}
	return res
}

// Clear drops everything, called when a new run starts.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.ring)
	b.head, b.size = 0, 0
}
