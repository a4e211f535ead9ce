package game

// Renderer is a pixel-grid display. The game never reads back from it.
type Renderer interface {
	SetPixel(at Coordinate, color Color)
	Clear()
	ShowMessage(text string)
}

// Render applies a frame to r: a reset frame clears first, a terminal
// frame ends with its game-over message.
func Render(r Renderer, f Frame) {
	if f.Reset {
		r.Clear()
	}
	for _, p := range f.Changes {
		if p.At.InBounds() {
			r.SetPixel(p.At, p.Color)
		}
	}
	if f.Status.Terminal() && f.Message != "" {
		r.ShowMessage(f.Message)
	}
}
