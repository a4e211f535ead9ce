// Package autopilot steers the snake without a player.
package autopilot

import (
	"github.com/joonazan/vec2"
	"github.com/nickdavies/go-astar/astar"

	"github.com/amalg/go-snake/internal/game"
)

// blockedWeight marks a tile as impassable for the path finder.
const blockedWeight = -1

// Pilot is a game.DirectionSource that chases the food.
//
// It routes the head to the food with A*, treating the whole body as a
// wall (the tail is still body when the move is checked). With no route
// it picks the safe neighbour with the most room around it.
type Pilot struct{}

// New returns a pilot.
func New() *Pilot {
	return &Pilot{}
}

// Poll implements game.DirectionSource.
func (p *Pilot) Poll(st game.State) (game.Direction, bool) {
	if len(st.Snake) == 0 || st.Status.Terminal() {
		return 0, false
	}

	blocked := make(map[game.Coordinate]bool, len(st.Snake))
	for _, c := range st.Snake {
		blocked[c] = true
	}

	if st.FoodPresent {
		if d, ok := route(st, blocked); ok {
			return d, true
		}
	}
	return fallback(st, blocked)
}

// route returns the first move of a shortest path from head to food.
func route(st game.State, blocked map[game.Coordinate]bool) (game.Direction, bool) {
	head := st.Head()

	a := astar.NewAStar(game.Size, game.Size)
	for c := range blocked {
		if c != head {
			a.FillTile(toPoint(c), blockedWeight)
		}
	}

	path := a.FindPath(astar.NewPointToPoint(), []astar.Point{toPoint(head)}, []astar.Point{toPoint(st.Food)})
	if path == nil {
		return 0, false
	}

	var cells []game.Coordinate
	for pp := path; pp != nil; pp = pp.Parent {
		cells = append(cells, fromPoint(pp.Point))
	}

	// The chain may run either way between head and food.
	for i, c := range cells {
		if c != head {
			continue
		}
		for _, j := range []int{i + 1, i - 1} {
			if j < 0 || j >= len(cells) {
				continue
			}
			if d, ok := step(head, cells[j]); ok && !blocked[cells[j]] {
				return d, true
			}
		}
	}
	return 0, false
}

// fallback picks the safe move with the most free neighbours, closest
// to the food on ties.
func fallback(st game.State, blocked map[game.Coordinate]bool) (game.Direction, bool) {
	head := st.Head()
	food := toVector(st.Food)

	var (
		best      game.Direction
		bestRoom  = -1
		bestDist  float64
		foundSafe bool
	)
	for d := game.DirUp; d <= game.DirRight; d++ {
		next := game.Shift(head, d)
		if !next.InBounds() || blocked[next] {
			continue
		}

		room := 0
		for n := game.DirUp; n <= game.DirRight; n++ {
			around := game.Shift(next, n)
			if around.InBounds() && !blocked[around] {
				room++
			}
		}
		dist := toVector(next).Minus(food).Length()

		if room > bestRoom || (room == bestRoom && st.FoodPresent && dist < bestDist) {
			best, bestRoom, bestDist, foundSafe = d, room, dist, true
		}
	}
	return best, foundSafe
}

// step returns the direction that moves from one cell to an adjacent one.
func step(from, to game.Coordinate) (game.Direction, bool) {
	for d := game.DirUp; d <= game.DirRight; d++ {
		if game.Shift(from, d) == to {
			return d, true
		}
	}
	return 0, false
}

func toPoint(c game.Coordinate) astar.Point {
	return astar.Point{Row: c.Y, Col: c.X}
}

func fromPoint(p astar.Point) game.Coordinate {
	return game.Coordinate{X: p.Col, Y: p.Row}
}

func toVector(c game.Coordinate) vec2.Vector {
	return vec2.Vector{X: float64(c.X), Y: float64(c.Y)}
}
