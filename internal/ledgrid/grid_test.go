package ledgrid

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/amalg/go-snake/internal/game"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(40, 20)
	return screen
}

func pixelAt(screen tcell.Screen, c game.Coordinate) (rune, tcell.Color) {
	r, _, style, _ := screen.GetContent(originX+c.X*cellWidth, originY+c.Y)
	fg, _, _ := style.Decompose()
	return r, fg
}

type fakeController struct {
	steered  []game.Direction
	restarts int
	frames   chan game.Frame
}

func (c *fakeController) Steer(d game.Direction)    { c.steered = append(c.steered, d) }
func (c *fakeController) Restart()                  { c.restarts++ }
func (c *fakeController) Frames() <-chan game.Frame { return c.frames }

func TestDrawPixels(t *testing.T) {
	screen := newTestScreen(t)
	defer screen.Fini()
	g := New(screen)

	g.Draw(game.Frame{
		Reset: true,
		Changes: []game.Pixel{
			{At: game.Coordinate{X: 0, Y: 0}, Color: game.ColorSnake},
			{At: game.Coordinate{X: 3, Y: 2}, Color: game.ColorFood},
		},
		Length: 1,
	})

	if r, fg := pixelAt(screen, game.Coordinate{X: 0, Y: 0}); r != '█' || fg != snakeColor {
		t.Errorf("expected red snake pixel, got %q %v", r, fg)
	}
	if r, fg := pixelAt(screen, game.Coordinate{X: 3, Y: 2}); r != '█' || fg != foodColor {
		t.Errorf("expected white food pixel, got %q %v", r, fg)
	}

	g.Draw(game.Frame{Changes: []game.Pixel{{At: game.Coordinate{X: 0, Y: 0}, Color: game.ColorBlank}}})
	if r, _ := pixelAt(screen, game.Coordinate{X: 0, Y: 0}); r != ' ' {
		t.Errorf("expected blank pixel, got %q", r)
	}
}

func TestShowMessage(t *testing.T) {
	screen := newTestScreen(t)
	defer screen.Fini()
	g := New(screen)

	g.Draw(game.Frame{Status: game.StatusWon, Length: game.Cells, Message: "You won!"})

	y := originY + game.Size + 2
	got := make([]rune, 0, 8)
	for x := originX - 1; x < originX-1+len("You won!"); x++ {
		r, _, _, _ := screen.GetContent(x, y)
		got = append(got, r)
	}
	if string(got) != "You won!" {
		t.Errorf("expected message %q, got %q", "You won!", string(got))
	}
}

func TestHandleEvent(t *testing.T) {
	ctrl := &fakeController{}

	events := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone),
	}
	for _, ev := range events {
		if !handleEvent(ev, ctrl) {
			t.Fatalf("event %v should not quit", ev.Name())
		}
	}

	want := []game.Direction{game.DirUp, game.DirLeft, game.DirRight}
	if len(ctrl.steered) != len(want) {
		t.Fatalf("expected %v, got %v", want, ctrl.steered)
	}
	for i := range want {
		if ctrl.steered[i] != want[i] {
			t.Errorf("steer %d: expected %s, got %s", i, want[i], ctrl.steered[i])
		}
	}
	if ctrl.restarts != 1 {
		t.Errorf("expected 1 restart, got %d", ctrl.restarts)
	}

	if handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ctrl) {
		t.Error("escape should quit")
	}
	if handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ctrl) {
		t.Error("q should quit")
	}
}

func TestRunStopsOnClosedFrames(t *testing.T) {
	screen := newTestScreen(t)
	defer screen.Fini()
	g := New(screen)

	ctrl := &fakeController{frames: make(chan game.Frame, 1)}
	ctrl.frames <- game.Frame{Reset: true, Length: 1}
	close(ctrl.frames)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.Run(ctx, ctrl); err == nil {
		t.Error("expected an error when the frame stream ends")
	}
}
