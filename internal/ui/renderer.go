package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-snake/internal/game"
)

// Color palette
var (
	// Pixel styles, red snake and white food like the LED hat
	snakeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ff2222")).
			Foreground(lipgloss.Color("#ff2222"))

	foodStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ffffff")).
			Foreground(lipgloss.Color("#ffffff"))

	blankStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#1a1a2e"))

	// Frame around the 8x8 grid
	gridBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466"))

	// HUD styles
	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	waitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff")).
			Bold(true)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true).
			Blink(true)

	loserStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// Panel is an in-memory 8x8 pixel grid. It implements game.Renderer.
type Panel struct {
	cells   [game.Size][game.Size]game.Color
	message string
}

// NewPanel returns a blank panel.
func NewPanel() *Panel {
	return &Panel{}
}

// SetPixel implements game.Renderer.
func (p *Panel) SetPixel(at game.Coordinate, c game.Color) {
	if at.InBounds() {
		p.cells[at.Y][at.X] = c
	}
}

// Clear implements game.Renderer. It also drops the message.
func (p *Panel) Clear() {
	p.cells = [game.Size][game.Size]game.Color{}
	p.message = ""
}

// ShowMessage implements game.Renderer.
func (p *Panel) ShowMessage(text string) {
	p.message = text
}

// At returns the color of a cell.
func (p *Panel) At(c game.Coordinate) game.Color {
	if !c.InBounds() {
		return game.ColorBlank
	}
	return p.cells[c.Y][c.X]
}

// Message returns the last message shown.
func (p *Panel) Message() string {
	return p.message
}

// RenderPanel converts the panel into a styled terminal string.
func RenderPanel(p *Panel) string {
	rows := make([]string, 0, game.Size)
	for y := 0; y < game.Size; y++ {
		cells := make([]string, 0, game.Size)
		for x := 0; x < game.Size; x++ {
			cells = append(cells, renderCell(p.cells[y][x]))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return gridBorderStyle.Render(strings.Join(rows, "\n"))
}

// renderCell renders one pixel, 2 characters wide for a square-ish look.
func renderCell(c game.Color) string {
	switch c {
	case game.ColorSnake:
		return snakeStyle.Render("██")
	case game.ColorFood:
		return foodStyle.Render("██")
	default:
		return blankStyle.Render("  ")
	}
}

// RenderHUD renders the heads-up display with length, status and message.
func RenderHUD(title string, f *game.Frame, message string) string {
	var parts []string

	parts = append(parts, titleStyle.Render("🐍 "+title))
	parts = append(parts, "")

	if f == nil {
		parts = append(parts, waitingStyle.Render("⏳ Waiting for the game..."))
		return hudBorderStyle.Render(strings.Join(parts, "\n"))
	}

	switch f.Status {
	case game.StatusNotStarted:
		parts = append(parts, waitingStyle.Render("⏳ Press an arrow key to start"))
	case game.StatusRunning:
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")).Render("▶ GAME IN PROGRESS"))
	case game.StatusWon:
		parts = append(parts, winnerStyle.Render("🏆 "+message))
	case game.StatusLost:
		parts = append(parts, loserStyle.Render("💀 "+message))
	}
	parts = append(parts, "")

	parts = append(parts, fmt.Sprintf("Length: %d / %d", f.Length, game.Cells))
	if f.Status.Terminal() {
		parts = append(parts, fmt.Sprintf("Score:  %d", f.Length))
		parts = append(parts, "   Press [R] to play again")
	}

	parts = append(parts, "")
	parts = append(parts, dimStyle.Render("WASD/Arrows: Move | R: Restart | Q: Quit"))

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}
