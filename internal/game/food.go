package game

// Food is the single food cell, if any.
type Food struct {
	At      Coordinate `json:"at"`
	Present bool       `json:"present"`
}

// Matches reports whether food is present at c.
func (f Food) Matches(c Coordinate) bool {
	return f.Present && f.At == c
}

// ensurePresent spawns food on a uniformly chosen free cell when none is
// present. It reports won instead when no free cell is left.
func (f *Food) ensurePresent(b *Board, r Rand) (spawned, won bool) {
	if f.Present {
		return false, false
	}
	c, ok := b.randomFree(r)
	if !ok {
		return false, true
	}
	b.Occupy(c)
	f.At = c
	f.Present = true
	return true, false
}

// consumeIfMatched eats the food when c is the food cell. The cell stays
// off the free set: it now belongs to the snake.
func (f *Food) consumeIfMatched(c Coordinate) bool {
	if !f.Matches(c) {
		return false
	}
	f.Present = false
	return true
}
