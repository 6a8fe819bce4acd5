package trace

import "sync/atomic"

// cacheLineSize is a typical CPU cache line width, used to pad the
// producer-private and consumer-private cursor groups apart so the two
// threads never false-share a line (spec §4.4).
const cacheLineSize = 64

// DefaultCapacity is the default number of pre-allocated slots. Must be a
// power of two for mask-based indexing.
const DefaultCapacity = 1 << 14

// Ring is a single-producer/single-consumer, lossy, fixed-capacity circular
// buffer of TraceEvent slots. The engine thread is the sole producer; the
// drain thread is the sole consumer (spec §5). claim/publish are
// producer-only; poll/release are consumer-only — calling them from the
// wrong side is undefined, exactly as spec §4.4 specifies.
type Ring struct {
	slots []TraceEvent
	mask  uint64

	// Producer-private state.
	writeCursor uint64
	cachedHead  uint64
	_p0         [cacheLineSize]byte

	// Shared: producer writes (release), consumer reads (acquire).
	tail atomic.Uint64
	_p1  [cacheLineSize]byte

	// Shared: consumer writes (release), producer reads (acquire).
	head atomic.Uint64
	_p2  [cacheLineSize]byte

	// Consumer-private state.
	readCursor uint64
	cachedTail uint64
}

// NewRing allocates a ring with the given capacity, rounded up to the next
// power of two if necessary.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	capacity = nextPowerOfTwo(capacity)
	return &Ring{
		slots: make([]TraceEvent, capacity),
		mask:  uint64(capacity - 1),
	}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Capacity returns the number of slots in the ring.
func (r *Ring) Capacity() int { return len(r.slots) }

// Claim returns an exclusive writable slot, or (nil, false) if the ring is
// full. Producer-only. On success, writeCursor advances by one; tail is
// left untouched until Publish.
func (r *Ring) Claim() (*TraceEvent, bool) {
	if r.writeCursor-r.cachedHead >= uint64(len(r.slots)) {
		r.cachedHead = r.head.Load() // acquire
		if r.writeCursor-r.cachedHead >= uint64(len(r.slots)) {
			return nil, false // ring full: drop, never block (spec §4.4/§7)
		}
	}
	idx := r.writeCursor & r.mask
	r.writeCursor++
	return &r.slots[idx], true
}

// Publish makes every slot claimed since the last Publish visible to the
// consumer, in order, atomically. Producer-only.
func (r *Ring) Publish() {
	r.tail.Store(r.writeCursor) // release
}

// Poll returns the next unread slot, or (nil, false) if the ring is empty.
// Consumer-only.
func (r *Ring) Poll() (*TraceEvent, bool) {
	if r.readCursor == r.cachedTail {
		r.cachedTail = r.tail.Load() // acquire
		if r.readCursor == r.cachedTail {
			return nil, false
		}
	}
	idx := r.readCursor & r.mask
	return &r.slots[idx], true
}

// Release clears slot's payload and advances the consumer cursor, making the
// slot available for producer reuse. Consumer-only. Must be called exactly
// once per slot returned by Poll, in order.
func (r *Ring) Release(slot *TraceEvent) {
	slot.clear()
	r.readCursor++
	r.head.Store(r.readCursor) // release
}

// IsEmpty acquire-reads both cursors and reports whether any published,
// unreleased events remain.
func (r *Ring) IsEmpty() bool {
	return r.head.Load() == r.tail.Load()
}
