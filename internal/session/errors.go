package session

import (
	"errors"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
)

// Stable error codes shared by the HTTP and gRPC surfaces
const (
	CodeDraftNotFound        = "DRAFT_NOT_FOUND"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeUnknownFormation     = "UNKNOWN_FORMATION"
	CodeUnknownSlot          = "UNKNOWN_SLOT"
	CodeInvalidMove          = "INVALID_MOVE"
	CodeBenchFull            = "BENCH_FULL"
	CodeNoCurrentSelection   = "NO_CURRENT_SELECTION"
	CodeNothingToUndo        = "NOTHING_TO_UNDO"
	CodeDraftComplete        = "DRAFT_ALREADY_COMPLETE"
	CodeNotStarted           = "NOT_STARTED"
	CodeAlreadyStarted       = "ALREADY_STARTED"
	CodeAlreadyDrafted       = "ALREADY_DRAFTED"
	CodeAlreadyPlaced        = "ALREADY_PLACED"
	CodeNoPlacements         = "NO_PLACEMENTS"
	CodeInvalidSnapshot      = "INVALID_SNAPSHOT"
	CodeInvariantViolation   = "INVARIANT_VIOLATION"
	CodeInternal             = "INTERNAL"
)

// Kind groups codes by who is at fault
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalid
	KindConflict
)

var classified = []struct {
	err  error
	code string
	kind Kind
}{
	{ErrDraftNotFound, CodeDraftNotFound, KindNotFound},
	{draft.ErrPlayerNotFound, CodePlayerNotFound, KindNotFound},
	{draft.ErrInvalidConfiguration, CodeInvalidConfiguration, KindInvalid},
	{draft.ErrUnknownFormation, CodeUnknownFormation, KindInvalid},
	{draft.ErrUnknownSlot, CodeUnknownSlot, KindInvalid},
	{draft.ErrInvalidMove, CodeInvalidMove, KindInvalid},
	{draft.ErrBenchFull, CodeBenchFull, KindConflict},
	{draft.ErrNoCurrentSelection, CodeNoCurrentSelection, KindConflict},
	{draft.ErrNothingToUndo, CodeNothingToUndo, KindConflict},
	{draft.ErrDraftAlreadyComplete, CodeDraftComplete, KindConflict},
	{draft.ErrNotStarted, CodeNotStarted, KindConflict},
	{draft.ErrAlreadyStarted, CodeAlreadyStarted, KindConflict},
	{draft.ErrAlreadyDrafted, CodeAlreadyDrafted, KindConflict},
	{draft.ErrAlreadyPlaced, CodeAlreadyPlaced, KindConflict},
	{draft.ErrNoPlacements, CodeNoPlacements, KindConflict},
	{draft.ErrInvalidSnapshot, CodeInvalidSnapshot, KindInternal},
	{draft.ErrInvariantViolation, CodeInvariantViolation, KindInternal},
}

// Classify returns the stable code and kind for err
func Classify(err error) (string, Kind) {
	for _, c := range classified {
		if errors.Is(err, c.err) {
			return c.code, c.kind
		}
	}
	return CodeInternal, KindInternal
}
