package game

import (
	"fmt"
	"time"
)

// Size is the width and height of the board in cells.
const Size = 8

// Cells is the board capacity.
const Cells = Size * Size

// Coordinate is a cell position on the board. Values outside [0, Size-1]
// are legal candidates that the collision check rejects.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether both axes are within the board.
func (c Coordinate) InBounds() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Color is the semantic color of a pixel. Display adapters decide what
// it looks like.
type Color int

const (
	ColorBlank Color = iota
	ColorSnake
	ColorFood
)

func (c Color) String() string {
	switch c {
	case ColorSnake:
		return "snake"
	case ColorFood:
		return "food"
	default:
		return "blank"
	}
}

// Pixel is a single cell change for the display.
type Pixel struct {
	At    Coordinate `json:"at"`
	Color Color      `json:"color"`
}

// Status represents the current game phase.
type Status int

const (
	StatusNotStarted Status = iota // Waiting for the first direction
	StatusRunning                  // Game in progress
	StatusWon                      // Snake fills the board
	StatusLost                     // Snake hit a wall or itself
)

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Cause explains a lost game.
type Cause int

const (
	CauseNone Cause = iota
	CauseHitSelf
	CauseHitWall
)

func (c Cause) String() string {
	switch c {
	case CauseHitSelf:
		return "hit_self"
	case CauseHitWall:
		return "hit_wall"
	default:
		return "none"
	}
}

// Step is the result of one Advance call.
type Step struct {
	Changes []Pixel    `json:"changes"`
	Status  Status     `json:"status"`
	Cause   Cause      `json:"cause,omitempty"`
	At      Coordinate `json:"at"` // Offending coordinate when lost
	Length  int        `json:"length"`
	Ate     bool       `json:"ate,omitempty"`
	Message string     `json:"message,omitempty"`
}

// State is a copy of the observable session state.
type State struct {
	Snake       []Coordinate `json:"snake"`
	Food        Coordinate   `json:"food"`
	FoodPresent bool         `json:"food_present"`
	Status      Status       `json:"status"`
	Cause       Cause        `json:"cause,omitempty"`
	At          Coordinate   `json:"at"`
	Length      int          `json:"length"`
	Message     string       `json:"message,omitempty"`
}

// Head returns the most recently added body coordinate.
func (s State) Head() Coordinate {
	return s.Snake[len(s.Snake)-1]
}

// Frame is what the engine hands to displays after every tick.
// Reset frames carry a full redraw and require a Clear first.
type Frame struct {
	Tick    uint64     `json:"tick"`
	Reset   bool       `json:"reset,omitempty"`
	Changes []Pixel    `json:"changes"`
	Status  Status     `json:"status"`
	Cause   Cause      `json:"cause,omitempty"`
	At      Coordinate `json:"at"`
	Length  int        `json:"length"`
	Ate     bool       `json:"ate,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Config holds the tunable parameters of the game loop.
type Config struct {
	TickRate  int   `json:"tick_rate"`  // Ticks per second
	Seed      int64 `json:"seed"`       // 0 seeds from the clock
	QueueSize int   `json:"queue_size"` // Buffered direction events
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		TickRate:  4,
		Seed:      0,
		QueueSize: 64,
	}
}

// Interval returns the time between ticks.
func (c Config) Interval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(c.TickRate)
}
