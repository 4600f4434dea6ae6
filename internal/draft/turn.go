package draft

// DefaultMaxRounds is used when Initialize is given zero rounds
const DefaultMaxRounds = 18

// TurnState is the snake-order position of a draft. Rounds are 1-based and
// the draft is complete once Round exceeds MaxRounds.
type TurnState struct {
	ManagerCount int  `json:"managerCount"`
	ManagerIndex int  `json:"managerIndex"`
	Round        int  `json:"round"`
	Reversed     bool `json:"reversed"`
	MaxRounds    int  `json:"maxRounds"`
}

// NewTurnState is the first turn of a draft between n managers
func NewTurnState(n, maxRounds int) TurnState {
	return TurnState{ManagerCount: n, ManagerIndex: 0, Round: 1, MaxRounds: maxRounds}
}

// Advance moves to the next manager in snake order. Reaching either end of
// the order starts a new round with the same manager and flips direction.
func Advance(s TurnState) TurnState {
	if !s.Reversed {
		next := s.ManagerIndex + 1
		if next >= s.ManagerCount {
			s.ManagerIndex = s.ManagerCount - 1
			s.Round++
			s.Reversed = true
			return s
		}
		s.ManagerIndex = next
		return s
	}

	next := s.ManagerIndex - 1
	if next < 0 {
		s.ManagerIndex = 0
		s.Round++
		s.Reversed = false
		return s
	}
	s.ManagerIndex = next
	return s
}

// ForceComplete ends the draft without moving the manager pointer
func ForceComplete(s TurnState) TurnState {
	s.Round = s.MaxRounds + 1
	return s
}

// IsComplete reports whether every round has been played
func (s TurnState) IsComplete() bool {
	return s.Round > s.MaxRounds
}

// Progress is the share of completed rounds as a percentage in [0, 100]
func (s TurnState) Progress() float64 {
	if s.MaxRounds <= 0 {
		return 0
	}
	p := float64(s.Round-1) / float64(s.MaxRounds) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
