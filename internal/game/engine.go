package game

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"
)

// DirectionSource supplies a direction when no player input arrived
// during a tick.
type DirectionSource interface {
	Poll(state State) (Direction, bool)
}

// Observer is notified of every frame the engine produces.
type Observer interface {
	ObserveFrame(f Frame, took time.Duration)
}

// Engine is the game loop. It owns the session and turns queued
// directions into one Advance call per tick.
type Engine struct {
	Config Config

	session    *Session
	rand       *rand.Rand
	directions chan Direction
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex

	source    DirectionSource
	observers []Observer
	onFrame   func(Frame) // Callback after each tick with a frame copy

	last    Direction
	steered bool
	restart bool
	tick    uint64
}

// NewEngine creates a new engine with a fresh session.
func NewEngine(config Config) *Engine {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	return &Engine{
		Config:     config,
		session:    NewSession(r),
		rand:       r,
		directions: make(chan Direction, config.QueueSize),
		done:       make(chan struct{}),
	}
}

// OnFrame sets a callback that is invoked with every frame.
// Used by displays and the network server.
func (e *Engine) OnFrame(fn func(Frame)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFrame = fn
}

// SetSource installs a direction source consulted when no input is queued.
func (e *Engine) SetSource(src DirectionSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = src
}

// Observe registers an observer for every frame.
func (e *Engine) Observe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Run emits the initial frame and then ticks at the configured rate.
// It blocks until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.Config.Interval())
	defer ticker.Stop()

	e.emit(e.Redraw(), 0)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Stop halts the game loop.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.done) })
}

// Steer queues a direction for the next tick.
func (e *Engine) Steer(d Direction) {
	if !d.Valid() {
		return
	}
	select {
	case e.directions <- d:
	default:
		// Drop input if the buffer is full; only the latest one counts anyway
	}
}

// Restart replaces the session with a new game on the next tick.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restart = true
}

// Snapshot returns a copy of the session state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Snapshot()
}

// Redraw returns a reset frame that draws the whole current state.
func (e *Engine) Redraw() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redrawLocked()
}

// redrawLocked MUST be called while e.mu is held.
func (e *Engine) redrawLocked() Frame {
	st := e.session.Snapshot()
	return Frame{
		Tick:    e.tick,
		Reset:   true,
		Changes: e.session.Redraw(),
		Status:  st.Status,
		Cause:   st.Cause,
		At:      st.At,
		Length:  st.Length,
		Message: st.Message,
	}
}

// Tick processes one game tick: apply a pending restart, resolve the
// direction and advance the session.
// The frame is built under the lock and emitted after releasing it,
// since callbacks may call back into the engine.
func (e *Engine) Tick() {
	start := time.Now()
	e.mu.Lock()

	e.tick++
	var (
		frame Frame
		ok    bool
	)
	if e.restart {
		e.restartLocked()
		frame, ok = e.redrawLocked(), true
	} else {
		frame, ok = e.advanceLocked()
	}

	e.mu.Unlock()

	if ok {
		e.emit(frame, time.Since(start))
	}
}

// restartLocked MUST be called while e.mu is held.
func (e *Engine) restartLocked() {
	e.restart = false
	e.session = NewSession(e.rand)
	e.steered = false
	e.drainDirections()
	log.Printf("[ENGINE] New game started")
}

// advanceLocked MUST be called while e.mu is held.
func (e *Engine) advanceLocked() (Frame, bool) {
	if e.session.Status().Terminal() {
		e.drainDirections()
		return Frame{}, false
	}

	d, ok := e.nextDirectionLocked()
	if !ok {
		return Frame{}, false
	}

	step, err := e.session.Advance(d)
	if err != nil {
		if errors.Is(err, ErrGameOver) {
			log.Printf("[ENGINE] BUG: advance on finished session: %v", err)
		} else {
			log.Printf("[ENGINE] Advance failed: %v", err)
		}
		return Frame{}, false
	}

	if step.Status.Terminal() {
		log.Printf("[ENGINE] Game over after %d ticks: %s (length %d)", e.tick, step.Message, step.Length)
	}

	return Frame{
		Tick:    e.tick,
		Changes: step.Changes,
		Status:  step.Status,
		Cause:   step.Cause,
		At:      step.At,
		Length:  step.Length,
		Ate:     step.Ate,
		Message: step.Message,
	}, true
}

// nextDirectionLocked coalesces queued input to the latest event. With no
// input it asks the source, then repeats the previous direction.
func (e *Engine) nextDirectionLocked() (Direction, bool) {
	d, ok := e.drainDirections()
	if !ok && e.source != nil {
		d, ok = e.source.Poll(e.session.Snapshot())
	}
	if !ok {
		return e.last, e.steered
	}
	e.last = d
	e.steered = true
	return d, true
}

// drainDirections empties the queue and returns the most recent entry.
func (e *Engine) drainDirections() (Direction, bool) {
	var (
		latest Direction
		found  bool
	)
	for {
		select {
		case d := <-e.directions:
			latest, found = d, true
		default:
			return latest, found
		}
	}
}

func (e *Engine) emit(f Frame, took time.Duration) {
	e.mu.Lock()
	fn := e.onFrame
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()

	for _, o := range observers {
		o.ObserveFrame(f, took)
	}
	if fn != nil {
		fn(f)
	}
}
