package game

import (
	"math/rand"
	"testing"
)

func TestNewBoard(t *testing.T) {
	b := NewBoard()

	if b.FreeCount() != Cells {
		t.Fatalf("expected %d free cells, got %d", Cells, b.FreeCount())
	}
	if b.IsFull() {
		t.Fatal("new board should not be full")
	}

	free := b.Free()
	if len(free) != Cells {
		t.Fatalf("expected %d cells from Free, got %d", Cells, len(free))
	}
	// Row-major order
	if free[0] != (Coordinate{0, 0}) || free[1] != (Coordinate{1, 0}) || free[Size] != (Coordinate{0, 1}) {
		t.Errorf("Free should be row-major, got %v %v %v", free[0], free[1], free[Size])
	}
}

func TestOccupyRelease(t *testing.T) {
	b := NewBoard()
	c := Coordinate{X: 3, Y: 4}

	b.Occupy(c)
	if b.IsFree(c) {
		t.Errorf("%v should not be free after Occupy", c)
	}
	if b.FreeCount() != Cells-1 {
		t.Errorf("expected %d free cells, got %d", Cells-1, b.FreeCount())
	}

	b.Release(c)
	if !b.IsFree(c) {
		t.Errorf("%v should be free after Release", c)
	}
	if b.FreeCount() != Cells {
		t.Errorf("expected %d free cells, got %d", Cells, b.FreeCount())
	}
}

func TestOffBoardIsNeverFree(t *testing.T) {
	b := NewBoard()
	for _, c := range []Coordinate{{-1, 0}, {0, -1}, {Size, 0}, {0, Size}} {
		if b.IsFree(c) {
			t.Errorf("%v is off the board and should not be free", c)
		}
	}
}

func TestBoardInvariantViolationsPanic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *Board)
	}{
		{"occupy twice", func(b *Board) {
			b.Occupy(Coordinate{1, 1})
			b.Occupy(Coordinate{1, 1})
		}},
		{"occupy off board", func(b *Board) { b.Occupy(Coordinate{-1, 2}) }},
		{"release free cell", func(b *Board) { b.Release(Coordinate{2, 2}) }},
		{"release off board", func(b *Board) { b.Release(Coordinate{8, 8}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s should panic", tt.name)
				}
			}()
			tt.fn(NewBoard())
		})
	}
}

func TestFillEveryCell(t *testing.T) {
	b := NewBoard()
	r := rand.New(rand.NewSource(7))

	seen := make(map[Coordinate]bool)
	for i := 0; i < Cells; i++ {
		c, ok := b.randomFree(r)
		if !ok {
			t.Fatalf("randomFree failed with %d free cells", b.FreeCount())
		}
		if seen[c] {
			t.Fatalf("randomFree returned occupied cell %v", c)
		}
		seen[c] = true
		b.Occupy(c)
	}

	if !b.IsFull() {
		t.Fatal("board should be full after occupying every cell")
	}
	if _, ok := b.randomFree(r); ok {
		t.Error("randomFree should fail on a full board")
	}
}
