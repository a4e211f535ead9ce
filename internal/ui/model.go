package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-snake/internal/game"
)

// Controller is where the UI sends input and gets frames from: a local
// engine or a network client.
type Controller interface {
	Steer(d game.Direction)
	Restart()
	Frames() <-chan game.Frame
}

// frameMsg carries a frame from the controller.
type frameMsg game.Frame

// errMsg carries an error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// Model is the Bubbletea model for the game.
type Model struct {
	ctrl     Controller
	title    string
	panel    *Panel
	frame    *game.Frame
	err      error
	quitting bool
}

// NewModel creates a new TUI model driven by the given controller.
func NewModel(ctrl Controller, title string) Model {
	return Model{
		ctrl:  ctrl,
		title: title,
		panel: NewPanel(),
	}
}

// Init starts listening for frames.
func (m Model) Init() tea.Cmd {
	return waitForFrame(m.ctrl)
}

// Update handles incoming messages (key presses, frames).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		f := game.Frame(msg)
		game.Render(m.panel, f)
		m.frame = &f
		return m, waitForFrame(m.ctrl)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the panel and HUD.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye! 👋\n"
	}

	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Render("Error: "+m.err.Error()) + "\n"
	}

	// Layout: grid on the left, HUD on the right
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		RenderPanel(m.panel),
		"  ",
		RenderHUD(m.title, m.frame, m.panel.Message()),
	) + "\n"
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "w":
		m.ctrl.Steer(game.DirUp)
	case "down", "s":
		m.ctrl.Steer(game.DirDown)
	case "left", "a":
		m.ctrl.Steer(game.DirLeft)
	case "right", "d":
		m.ctrl.Steer(game.DirRight)
	case "r":
		m.ctrl.Restart()
	}

	return m, nil
}

// waitForFrame returns a Cmd that waits for the next frame.
func waitForFrame(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ctrl.Frames()
		if !ok {
			return errMsg{err: fmt.Errorf("game connection closed")}
		}
		return frameMsg(f)
	}
}

// Local drives a UI from an in-process engine.
type Local struct {
	engine *game.Engine
	feed   *game.Feed
}

// NewLocal subscribes to the engine's frames.
func NewLocal(e *game.Engine) *Local {
	l := &Local{
		engine: e,
		feed: game.NewFeed(64, func() (game.Frame, bool) {
			return e.Redraw(), true
		}),
	}
	e.OnFrame(l.feed.Push)
	return l
}

// Steer implements Controller.
func (l *Local) Steer(d game.Direction) { l.engine.Steer(d) }

// Restart implements Controller.
func (l *Local) Restart() { l.engine.Restart() }

// Frames implements Controller.
func (l *Local) Frames() <-chan game.Frame { return l.feed.C() }

// Close stops delivering frames.
func (l *Local) Close() { l.feed.Close() }
