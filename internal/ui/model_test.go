package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-snake/internal/game"
)

type fakeController struct {
	steered  []game.Direction
	restarts int
	frames   chan game.Frame
}

func newFakeController() *fakeController {
	return &fakeController{frames: make(chan game.Frame, 4)}
}

func (c *fakeController) Steer(d game.Direction)    { c.steered = append(c.steered, d) }
func (c *fakeController) Restart()                  { c.restarts++ }
func (c *fakeController) Frames() <-chan game.Frame { return c.frames }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestHandleKeys(t *testing.T) {
	ctrl := newFakeController()
	var m tea.Model = NewModel(ctrl, "SNAKE")

	keys := []tea.KeyMsg{
		{Type: tea.KeyUp},
		{Type: tea.KeyLeft},
		runeKey('s'),
		runeKey('d'),
		runeKey('r'),
	}
	for _, k := range keys {
		m, _ = m.Update(k)
	}

	want := []game.Direction{game.DirUp, game.DirLeft, game.DirDown, game.DirRight}
	if len(ctrl.steered) != len(want) {
		t.Fatalf("expected %d steers, got %v", len(want), ctrl.steered)
	}
	for i, d := range want {
		if ctrl.steered[i] != d {
			t.Errorf("steer %d: expected %s, got %s", i, d, ctrl.steered[i])
		}
	}
	if ctrl.restarts != 1 {
		t.Errorf("expected 1 restart, got %d", ctrl.restarts)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(newFakeController(), "SNAKE")
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if !strings.Contains(next.View(), "Goodbye") {
		t.Errorf("expected goodbye view, got %q", next.View())
	}
}

func TestFramesUpdatePanel(t *testing.T) {
	m := NewModel(newFakeController(), "SNAKE")

	var tm tea.Model = m
	tm, cmd := tm.Update(frameMsg(game.Frame{
		Reset:   true,
		Changes: []game.Pixel{{At: game.Coordinate{X: 2, Y: 2}, Color: game.ColorSnake}},
		Status:  game.StatusNotStarted,
		Length:  1,
	}))
	if cmd == nil {
		t.Error("a frame should schedule the next wait")
	}
	tm, _ = tm.Update(frameMsg(game.Frame{
		Changes: []game.Pixel{
			{At: game.Coordinate{X: 5, Y: 5}, Color: game.ColorFood},
			{At: game.Coordinate{X: 2, Y: 1}, Color: game.ColorSnake},
			{At: game.Coordinate{X: 2, Y: 2}, Color: game.ColorBlank},
		},
		Status: game.StatusRunning,
		Length: 1,
	}))

	panel := tm.(Model).panel
	if panel.At(game.Coordinate{X: 2, Y: 1}) != game.ColorSnake {
		t.Error("expected snake at (2, 1)")
	}
	if panel.At(game.Coordinate{X: 2, Y: 2}) != game.ColorBlank {
		t.Error("expected (2, 2) cleared")
	}
	if panel.At(game.Coordinate{X: 5, Y: 5}) != game.ColorFood {
		t.Error("expected food at (5, 5)")
	}
	if !strings.Contains(tm.View(), "Length: 1 / 64") {
		t.Errorf("HUD should show the length, got:\n%s", tm.View())
	}

	tm, _ = tm.Update(frameMsg(game.Frame{Status: game.StatusLost, Cause: game.CauseHitSelf, Length: 1, Message: "Hit yourself"}))
	if got := tm.(Model).panel.Message(); got != "Hit yourself" {
		t.Errorf("expected game-over message, got %q", got)
	}
	if !strings.Contains(tm.View(), "Hit yourself") {
		t.Error("view should show the game-over message")
	}
}

func TestWaitForFrameClosed(t *testing.T) {
	ctrl := newFakeController()
	close(ctrl.frames)

	msg := waitForFrame(ctrl)()
	if _, ok := msg.(errMsg); !ok {
		t.Fatalf("expected errMsg, got %T", msg)
	}
}

func TestPanelClear(t *testing.T) {
	p := NewPanel()
	p.SetPixel(game.Coordinate{X: 1, Y: 1}, game.ColorSnake)
	p.SetPixel(game.Coordinate{X: 9, Y: 1}, game.ColorSnake) // ignored
	p.ShowMessage("You won!")
	p.Clear()

	if p.At(game.Coordinate{X: 1, Y: 1}) != game.ColorBlank || p.Message() != "" {
		t.Error("Clear should blank every pixel and the message")
	}
}

func TestLocalController(t *testing.T) {
	config := game.DefaultConfig()
	config.Seed = 8
	e := game.NewEngine(config)
	l := NewLocal(e)
	defer l.Close()

	l.Steer(game.DirUp)
	e.Tick()

	select {
	case f := <-l.Frames():
		if f.Status == game.StatusNotStarted {
			t.Errorf("expected the game to start, got %s", f.Status)
		}
	default:
		t.Fatal("expected a frame after the tick")
	}
}
