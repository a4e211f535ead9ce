// Package ledgrid shows the game on a full-screen terminal panel that
// mimics an 8x8 LED matrix.
package ledgrid

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/amalg/go-snake/internal/game"
)

const (
	originX   = 2 // Left edge of the pixel area
	originY   = 1 // Top edge of the pixel area
	cellWidth = 2 // Terminal columns per pixel
)

var (
	snakeColor = tcell.NewRGBColor(255, 0, 0)
	foodColor  = tcell.NewRGBColor(255, 255, 255)

	borderStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	textStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	messageStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Controller is where the grid sends input and gets frames from.
type Controller interface {
	Steer(d game.Direction)
	Restart()
	Frames() <-chan game.Frame
}

// Grid draws pixels on a tcell screen. It implements game.Renderer.
type Grid struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// New wraps an initialised screen.
func New(screen tcell.Screen) *Grid {
	g := &Grid{screen: screen}
	g.Clear()
	return g
}

// SetPixel implements game.Renderer.
func (g *Grid) SetPixel(at game.Coordinate, c game.Color) {
	if !at.InBounds() {
		return
	}
	r, style := ' ', tcell.StyleDefault
	switch c {
	case game.ColorSnake:
		r, style = '█', tcell.StyleDefault.Foreground(snakeColor)
	case game.ColorFood:
		r, style = '█', tcell.StyleDefault.Foreground(foodColor)
	}
	x := originX + at.X*cellWidth
	for i := 0; i < cellWidth; i++ {
		g.screen.SetContent(x+i, originY+at.Y, r, nil, style)
	}
}

// Clear implements game.Renderer. It blanks the screen and redraws the frame.
func (g *Grid) Clear() {
	g.screen.Clear()
	g.drawBorder()
}

// ShowMessage implements game.Renderer.
func (g *Grid) ShowMessage(text string) {
	g.clearLine(originY + game.Size + 2)
	g.drawText(originX-1, originY+game.Size+2, text, messageStyle)
}

// Draw applies a frame and flushes it to the terminal.
func (g *Grid) Draw(f game.Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()

	game.Render(g, f)
	g.clearLine(originY + game.Size + 1)
	g.drawText(originX-1, originY+game.Size+1, fmt.Sprintf("Length %d/%d", f.Length, game.Cells), textStyle)
	if !f.Status.Terminal() {
		g.clearLine(originY + game.Size + 2)
	}
	g.screen.Show()
}

// Run shows frames from ctrl and forwards key presses until the player
// quits, the frames end, or ctx is done.
func (g *Grid) Run(ctx context.Context, ctrl Controller) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				// Screen finalised
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-ctrl.Frames():
			if !ok {
				return fmt.Errorf("game connection closed")
			}
			g.Draw(f)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !handleEvent(ev, ctrl) {
				return nil
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				g.screen.Sync()
			}
		}
	}
}

// handleEvent maps key presses to controller calls. It returns false to quit.
func handleEvent(ev tcell.Event, ctrl Controller) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		ctrl.Steer(game.DirUp)
	case tcell.KeyDown:
		ctrl.Steer(game.DirDown)
	case tcell.KeyLeft:
		ctrl.Steer(game.DirLeft)
	case tcell.KeyRight:
		ctrl.Steer(game.DirRight)
	case tcell.KeyRune:
		switch key.Rune() {
		case 'q':
			return false
		case 'w':
			ctrl.Steer(game.DirUp)
		case 's':
			ctrl.Steer(game.DirDown)
		case 'a':
			ctrl.Steer(game.DirLeft)
		case 'd':
			ctrl.Steer(game.DirRight)
		case 'r':
			ctrl.Restart()
		}
	}
	return true
}

func (g *Grid) drawBorder() {
	left, right := originX-1, originX+game.Size*cellWidth
	top, bottom := originY-1, originY+game.Size

	for x := left + 1; x < right; x++ {
		g.screen.SetContent(x, top, '─', nil, borderStyle)
		g.screen.SetContent(x, bottom, '─', nil, borderStyle)
	}
	for y := top + 1; y < bottom; y++ {
		g.screen.SetContent(left, y, '│', nil, borderStyle)
		g.screen.SetContent(right, y, '│', nil, borderStyle)
	}
	g.screen.SetContent(left, top, '╭', nil, borderStyle)
	g.screen.SetContent(right, top, '╮', nil, borderStyle)
	g.screen.SetContent(left, bottom, '╰', nil, borderStyle)
	g.screen.SetContent(right, bottom, '╯', nil, borderStyle)
}

func (g *Grid) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		g.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (g *Grid) clearLine(y int) {
	w, _ := g.screen.Size()
	for x := 0; x < w; x++ {
		g.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}
