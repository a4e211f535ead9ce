package game

import (
	"fmt"
	"strings"
)

// Direction represents a movement direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// opposites maps every direction to its reverse.
var opposites = [...]Direction{
	DirUp:    DirDown,
	DirDown:  DirUp,
	DirLeft:  DirRight,
	DirRight: DirLeft,
}

var directionNames = [...]string{
	DirUp:    "up",
	DirDown:  "down",
	DirLeft:  "left",
	DirRight: "right",
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return opposites[d]
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection parses up, down, left or right (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalText encodes the direction as its name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Shift moves c one cell in direction d. No clamping is applied.
func Shift(c Coordinate, d Direction) Coordinate {
	switch d {
	case DirUp:
		c.Y--
	case DirDown:
		c.Y++
	case DirLeft:
		c.X--
	case DirRight:
		c.X++
	}
	return c
}

// NextHead computes the candidate head when the snake moves in d.
// Requesting an exact reversal keeps the snake going straight instead.
// The snake must not be empty.
func NextHead(snake []Coordinate, d Direction) Coordinate {
	head := snake[len(snake)-1]
	next := Shift(head, d)
	if len(snake) >= 2 && snake[len(snake)-2] == next {
		// The opposite shift can never land on the neck again, so one
		// substitution is always enough.
		return Shift(head, d.Opposite())
	}
	return next
}

// Heading returns the direction the snake last travelled, if any.
func Heading(snake []Coordinate) (Direction, bool) {
	if len(snake) < 2 {
		return 0, false
	}
	head, neck := snake[len(snake)-1], snake[len(snake)-2]
	for d := DirUp; d <= DirRight; d++ {
		if Shift(neck, d) == head {
			return d, true
		}
	}
	return 0, false
}
