package draft

import (
	"fmt"
	"time"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// SnapshotVersion is bumped whenever the persisted layout changes
const SnapshotVersion = 1

// Snapshot captures the committed state of the draft. The board of the turn
// in progress is not included; a restored draft resumes at the start of that
// turn.
func (e *Engine) Snapshot() (models.DraftSnapshot, error) {
	if e.status == StatusNotStarted {
		return models.DraftSnapshot{}, ErrNotStarted
	}
	return models.DraftSnapshot{
		Version: SnapshotVersion,
		Status:  string(e.status),
		Turn: models.TurnSnapshot{
			ManagerIndex: e.turn.ManagerIndex,
			Round:        e.turn.Round,
			Reversed:     e.turn.Reversed,
			MaxRounds:    e.turn.MaxRounds,
		},
		Managers: e.Managers(),
		Picks:    e.Picks(),
		SavedAt:  time.Now().UTC(),
	}, nil
}

// Restore rebuilds an engine from a snapshot and marks every rostered player
// as drafted in catalog.
func Restore(snap models.DraftSnapshot, catalog PlayerCatalog, formations FormationTable, opts ...Option) (*Engine, error) {
	if err := validateSnapshot(snap, formations); err != nil {
		return nil, err
	}

	e := New(catalog, formations, opts...)
	e.status = Status(snap.Status)
	e.turn = TurnState{
		ManagerCount: len(snap.Managers),
		ManagerIndex: snap.Turn.ManagerIndex,
		Round:        snap.Turn.Round,
		Reversed:     snap.Turn.Reversed,
		MaxRounds:    snap.Turn.MaxRounds,
	}

	e.managers = make([]models.Manager, len(snap.Managers))
	for i, m := range snap.Managers {
		if m.Formation == "" {
			m.Formation = e.defaultFormation
		}
		m.Roster = append([]models.Player{}, m.Roster...)
		e.managers[i] = m
		for _, p := range m.Roster {
			catalog.MarkDrafted(p.ID)
		}
	}
	e.picks = append([]models.PickRecord{}, snap.Picks...)

	if e.status == StatusInProgress {
		if err := e.startTurn(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}
	return e, nil
}

func validateSnapshot(snap models.DraftSnapshot, formations FormationTable) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	if len(snap.Managers) < 2 {
		return fmt.Errorf("%w: %d managers", ErrInvalidSnapshot, len(snap.Managers))
	}
	t := snap.Turn
	if t.MaxRounds < 1 || t.Round < 1 || t.ManagerIndex < 0 || t.ManagerIndex >= len(snap.Managers) {
		return fmt.Errorf("%w: turn %+v out of range", ErrInvalidSnapshot, t)
	}

	complete := t.Round > t.MaxRounds
	switch Status(snap.Status) {
	case StatusInProgress:
		if complete {
			return fmt.Errorf("%w: in progress past the last round", ErrInvalidSnapshot)
		}
	case StatusComplete:
		if !complete {
			return fmt.Errorf("%w: complete before the last round", ErrInvalidSnapshot)
		}
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidSnapshot, snap.Status)
	}

	seen := make(map[int]string)
	for _, m := range snap.Managers {
		if m.Formation != "" {
			if _, ok := formations.SlotsFor(m.Formation); !ok {
				return fmt.Errorf("%w: manager %q uses unknown formation %q", ErrInvalidSnapshot, m.Name, m.Formation)
			}
		}
		for _, p := range m.Roster {
			if owner, dup := seen[p.ID]; dup {
				return fmt.Errorf("%w: player %d on both %q and %q", ErrInvalidSnapshot, p.ID, owner, m.Name)
			}
			seen[p.ID] = m.Name
		}
	}
	return nil
}
