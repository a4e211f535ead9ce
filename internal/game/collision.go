package game

// Verdict is the classification of a candidate head.
type Verdict int

const (
	VerdictValid Verdict = iota
	VerdictWon
	VerdictHitSelf
	VerdictHitWall
)

func (v Verdict) String() string {
	switch v {
	case VerdictWon:
		return "won"
	case VerdictHitSelf:
		return "hit_self"
	case VerdictHitWall:
		return "hit_wall"
	default:
		return "valid"
	}
}

// Cause maps a losing verdict to its cause.
func (v Verdict) Cause() Cause {
	switch v {
	case VerdictHitSelf:
		return CauseHitSelf
	case VerdictHitWall:
		return CauseHitWall
	}
	return CauseNone
}

// Classification carries a verdict and the coordinate it concerns.
type Classification struct {
	Verdict Verdict
	At      Coordinate
}

// Lost reports whether the move ends the game in a loss.
func (c Classification) Lost() bool {
	return c.Verdict == VerdictHitSelf || c.Verdict == VerdictHitWall
}

// Classify checks candidate against the board before anything is
// committed. It has no side effects.
//
// Checks, first match wins:
//   - Won: no free cell and no food, the snake covers the board
//   - HitSelf: candidate is on the board but neither free nor food
//   - HitWall: candidate is outside the board
func Classify(b *Board, food Food, candidate Coordinate) Classification {
	switch {
	case b.IsFull() && !food.Present:
		return Classification{Verdict: VerdictWon, At: candidate}
	case candidate.InBounds() && !b.IsFree(candidate) && !food.Matches(candidate):
		return Classification{Verdict: VerdictHitSelf, At: candidate}
	case !candidate.InBounds():
		return Classification{Verdict: VerdictHitWall, At: candidate}
	}
	return Classification{Verdict: VerdictValid, At: candidate}
}
