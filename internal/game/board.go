package game

import "fmt"

// Rand is the random source used for start and food placement.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Board tracks which cells are free. A cell is free when it holds
// neither snake nor food.
//
// Free cells live in a slice with a position index so that occupy and
// release are O(1) and a seeded Rand always picks the same cell.
type Board struct {
	free  []Coordinate
	index map[Coordinate]int
}

// NewBoard returns a board with every cell free.
func NewBoard() *Board {
	b := &Board{
		free:  make([]Coordinate, 0, Cells),
		index: make(map[Coordinate]int, Cells),
	}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := Coordinate{X: x, Y: y}
			b.index[c] = len(b.free)
			b.free = append(b.free, c)
		}
	}
	return b
}

// Occupy removes c from the free set. c must be free.
func (b *Board) Occupy(c Coordinate) {
	i, ok := b.index[c]
	if !ok {
		panic(fmt.Sprintf("game: occupy %v: cell is not free", c))
	}
	last := len(b.free) - 1
	moved := b.free[last]
	b.free[i] = moved
	b.index[moved] = i
	b.free = b.free[:last]
	delete(b.index, c)
}

// Release returns c to the free set. c must be on the board and occupied.
func (b *Board) Release(c Coordinate) {
	if !c.InBounds() {
		panic(fmt.Sprintf("game: release %v: outside the board", c))
	}
	if _, ok := b.index[c]; ok {
		panic(fmt.Sprintf("game: release %v: cell is already free", c))
	}
	b.index[c] = len(b.free)
	b.free = append(b.free, c)
}

// IsFree reports whether c is a free cell. Off-board coordinates are never free.
func (b *Board) IsFree(c Coordinate) bool {
	_, ok := b.index[c]
	return ok
}

// IsFull reports whether no free cell is left.
func (b *Board) IsFull() bool {
	return len(b.free) == 0
}

// FreeCount returns the number of free cells.
func (b *Board) FreeCount() int {
	return len(b.free)
}

// Free returns the free cells in row-major order.
func (b *Board) Free() []Coordinate {
	out := make([]Coordinate, 0, len(b.free))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := Coordinate{X: x, Y: y}
			if b.IsFree(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// randomFree picks a free cell uniformly at random.
func (b *Board) randomFree(r Rand) (Coordinate, bool) {
	if len(b.free) == 0 {
		return Coordinate{}, false
	}
	return b.free[r.Intn(len(b.free))], true
}
