package game

import "sync"

// Feed delivers frames to a single reader in order. Frames are deltas,
// so when the reader falls behind the backlog is discarded and replaced
// by whatever resync returns, typically a full redraw.
type Feed struct {
	ch     chan Frame
	resync func() (Frame, bool)
	mu     sync.Mutex
	closed bool
}

// NewFeed creates a feed buffering up to size frames. resync may be nil.
func NewFeed(size int, resync func() (Frame, bool)) *Feed {
	if size <= 0 {
		size = 1
	}
	return &Feed{
		ch:     make(chan Frame, size),
		resync: resync,
	}
}

// C returns the channel of frames. It is closed by Close.
func (f *Feed) C() <-chan Frame {
	return f.ch
}

// Push queues a frame without blocking.
func (f *Feed) Push(fr Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	select {
	case f.ch <- fr:
		return
	default:
	}

	// Reader is behind: drop the backlog
drain:
	for {
		select {
		case <-f.ch:
		default:
			break drain
		}
	}
	if f.resync == nil {
		f.ch <- fr
		return
	}
	if redraw, ok := f.resync(); ok {
		f.ch <- redraw
	}
}

// Close closes the channel. Later pushes are ignored.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}
