package game

import (
	"errors"
	"fmt"
)

// ErrGameOver is returned when Advance is called on a finished session.
var ErrGameOver = errors.New("game: session is over")

// Session is one game from the first cell to Won or Lost. It owns all
// mutable game state and is not safe for concurrent use.
type Session struct {
	snake  []Coordinate // tail first, head last
	board  *Board
	food   Food
	rand   Rand
	status Status
	cause  Cause
	at     Coordinate
}

// NewSession starts a one-cell snake at a random cell drawn from r.
func NewSession(r Rand) *Session {
	board := NewBoard()
	start, _ := board.randomFree(r)
	board.Occupy(start)
	return &Session{
		snake:  []Coordinate{start},
		board:  board,
		rand:   r,
		status: StatusNotStarted,
	}
}

// Status returns the current game phase.
func (s *Session) Status() Status {
	return s.status
}

// Len returns the snake length, which is also the score.
func (s *Session) Len() int {
	return len(s.snake)
}

// Advance moves the game forward by one tick in direction d.
func (s *Session) Advance(d Direction) (Step, error) {
	if s.status.Terminal() {
		return Step{}, ErrGameOver
	}
	if !d.Valid() {
		return Step{}, fmt.Errorf("advance: invalid direction %d", int(d))
	}
	s.status = StatusRunning

	var changes []Pixel
	spawned, won := s.food.ensurePresent(s.board, s.rand)
	if won {
		s.status = StatusWon
		return s.step(changes, false), nil
	}
	if spawned {
		changes = append(changes, Pixel{At: s.food.At, Color: ColorFood})
	}

	candidate := NextHead(s.snake, d)

	// Classified before the tail moves, so the current tail cell is body.
	class := Classify(s.board, s.food, candidate)
	switch {
	case class.Lost():
		s.status = StatusLost
		s.cause = class.Verdict.Cause()
		s.at = class.At
		return s.step(changes, false), nil
	case class.Verdict == VerdictWon:
		s.status = StatusWon
		return s.step(changes, false), nil
	}

	s.snake = append(s.snake, candidate)
	changes = append(changes, Pixel{At: candidate, Color: ColorSnake})

	ate := s.food.consumeIfMatched(candidate)
	if !ate {
		s.board.Occupy(candidate)
		tail := s.snake[0]
		s.snake = s.snake[1:]
		s.board.Release(tail)
		changes = append(changes, Pixel{At: tail, Color: ColorBlank})
	}

	if len(s.snake) == Cells {
		s.status = StatusWon
	}
	return s.step(changes, ate), nil
}

func (s *Session) step(changes []Pixel, ate bool) Step {
	return Step{
		Changes: changes,
		Status:  s.status,
		Cause:   s.cause,
		At:      s.at,
		Length:  len(s.snake),
		Ate:     ate,
		Message: s.message(),
	}
}

// message is the game-over text shown by the display.
func (s *Session) message() string {
	switch s.status {
	case StatusWon:
		return "You won!"
	case StatusLost:
		if s.cause == CauseHitWall {
			return fmt.Sprintf("Hit edge of board (x=%d, y=%d)", s.at.X, s.at.Y)
		}
		return "Hit yourself"
	}
	return ""
}

// Redraw returns the pixels that draw the current state on a blank grid.
func (s *Session) Redraw() []Pixel {
	pixels := make([]Pixel, 0, len(s.snake)+1)
	for _, c := range s.snake {
		pixels = append(pixels, Pixel{At: c, Color: ColorSnake})
	}
	if s.food.Present {
		pixels = append(pixels, Pixel{At: s.food.At, Color: ColorFood})
	}
	return pixels
}

// Snapshot returns a deep copy of the observable state.
func (s *Session) Snapshot() State {
	body := make([]Coordinate, len(s.snake))
	copy(body, s.snake)
	return State{
		Snake:       body,
		Food:        s.food.At,
		FoodPresent: s.food.Present,
		Status:      s.status,
		Cause:       s.cause,
		At:          s.at,
		Length:      len(s.snake),
		Message:     s.message(),
	}
}

// FreeCount returns the number of cells holding neither snake nor food.
func (s *Session) FreeCount() int {
	return s.board.FreeCount()
}
