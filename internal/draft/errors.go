package draft

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid draft configuration")
	ErrNotStarted           = errors.New("draft has not started")
	ErrAlreadyStarted       = errors.New("draft already started")
	ErrDraftAlreadyComplete = errors.New("draft is already complete")
	ErrBenchFull            = errors.New("bench is full")
	ErrNoCurrentSelection   = errors.New("no player selected")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrNoPlacements         = errors.New("no players placed this turn")
	ErrUnknownSlot          = errors.New("unknown slot")
	ErrUnknownFormation     = errors.New("unknown formation")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrAlreadyDrafted       = errors.New("player already drafted")
	ErrAlreadyPlaced        = errors.New("player already placed this turn")
	ErrInvalidMove          = errors.New("invalid move")
	ErrInvalidSnapshot      = errors.New("invalid snapshot")
	ErrInvariantViolation   = errors.New("draft invariant violated")
)
