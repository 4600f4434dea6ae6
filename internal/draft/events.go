package draft

import "github.com/Billy-Davies-2/fc-draft-simulator/internal/models"

// Event is emitted to the engine observer after a successful command
type Event interface {
	isEvent()
}

// PlayerPicked carries the display name that the draft room announces
type PlayerPicked struct {
	ManagerIndex int
	ManagerName  string
	Player       models.Player
	DisplayName  string
}

// BoardChanged follows any placement, move, formation change or undo
type BoardChanged struct {
	ManagerIndex int
	Action       ActionView
	Undo         bool
}

// TurnFinished follows a committed turn
type TurnFinished struct {
	ManagerIndex int
	ManagerName  string
	Round        int
	Picks        []models.PickRecord
	Next         TurnState
}

// DraftCompleted is emitted once, when the last round ends or the draft is
// finished early
type DraftCompleted struct {
	Early bool
	Turn  TurnState
}

func (PlayerPicked) isEvent()   {}
func (BoardChanged) isEvent()   {}
func (TurnFinished) isEvent()   {}
func (DraftCompleted) isEvent() {}
