// Package draft implements the snake-draft turn order and the per-turn roster
// board that managers fill before committing their picks.
package draft

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// Status is the lifecycle stage of an engine
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// PlayerCatalog is the source of draftable players and their drafted flags
type PlayerCatalog interface {
	IsDrafted(id int) bool
	MarkDrafted(id int)
	UnmarkDrafted(id int)
	Filter(pred func(models.Player) bool) []models.Player
}

// Option configures an Engine
type Option func(*Engine)

// WithObserver registers fn to receive engine events synchronously
func WithObserver(fn func(Event)) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithDefaultFormation sets the formation new managers start with
func WithDefaultFormation(name string) Option {
	return func(e *Engine) { e.defaultFormation = name }
}

// WithLogger replaces the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine runs one draft. It is not safe for concurrent use; callers
// serialise access per draft.
type Engine struct {
	catalog          PlayerCatalog
	formations       FormationTable
	defaultFormation string
	observer         func(Event)
	log              *slog.Logger

	status   Status
	turn     TurnState
	managers []models.Manager
	picks    []models.PickRecord

	board   *Board
	current *models.Player
}

// New returns an engine waiting for Initialize
func New(catalog PlayerCatalog, formations FormationTable, opts ...Option) *Engine {
	e := &Engine{
		catalog:          catalog,
		formations:       formations,
		defaultFormation: formation.Default,
		status:           StatusNotStarted,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.With("component", "draft")
	}
	return e
}

// Initialize seats the managers and starts round one. maxRounds of zero
// means DefaultMaxRounds.
func (e *Engine) Initialize(names []string, maxRounds int) error {
	if e.status != StatusNotStarted {
		return ErrAlreadyStarted
	}
	if len(names) < 2 {
		return fmt.Errorf("%w: need at least 2 managers, got %d", ErrInvalidConfiguration, len(names))
	}
	if maxRounds < 0 {
		return fmt.Errorf("%w: max rounds must be positive, got %d", ErrInvalidConfiguration, maxRounds)
	}
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}
	if _, ok := e.formations.SlotsFor(e.defaultFormation); !ok {
		return fmt.Errorf("%w: default formation %q is not known", ErrInvalidConfiguration, e.defaultFormation)
	}

	managers := make([]models.Manager, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: manager %d has an empty name", ErrInvalidConfiguration, i+1)
		}
		managers[i] = models.Manager{ID: i + 1, Name: name, Roster: []models.Player{}, Formation: e.defaultFormation}
	}

	e.managers = managers
	e.picks = []models.PickRecord{}
	e.turn = NewTurnState(len(managers), maxRounds)
	e.status = StatusInProgress
	if err := e.startTurn(); err != nil {
		return err
	}

	e.log.Info("Draft initialized", "managers", len(managers), "max_rounds", maxRounds)
	return nil
}

func (e *Engine) startTurn() error {
	board, err := NewBoard(e.formations, e.managers[e.turn.ManagerIndex].Formation)
	if err != nil {
		return err
	}
	e.board = board
	e.current = nil
	return nil
}

func (e *Engine) requireInProgress() error {
	switch e.status {
	case StatusNotStarted:
		return ErrNotStarted
	case StatusComplete:
		return ErrDraftAlreadyComplete
	}
	return nil
}

// Pick makes the player the current selection of the manager on the clock
func (e *Engine) Pick(playerID int) (models.Player, error) {
	if err := e.requireInProgress(); err != nil {
		return models.Player{}, err
	}

	found := e.catalog.Filter(func(p models.Player) bool { return p.ID == playerID })
	if len(found) == 0 {
		return models.Player{}, fmt.Errorf("%w: %d", ErrPlayerNotFound, playerID)
	}
	p := found[0]
	if e.catalog.IsDrafted(p.ID) {
		return models.Player{}, fmt.Errorf("%w: %s", ErrAlreadyDrafted, p.DisplayName())
	}
	if e.board.Contains(p.ID) {
		return models.Player{}, fmt.Errorf("%w: %s", ErrAlreadyPlaced, p.DisplayName())
	}

	e.current = &p
	mgr := e.managers[e.turn.ManagerIndex]
	e.log.Debug("Player picked", "manager", mgr.Name, "player_id", p.ID)
	e.emit(PlayerPicked{ManagerIndex: e.turn.ManagerIndex, ManagerName: mgr.Name, Player: p, DisplayName: p.DisplayName()})
	return p, nil
}

// PlaceOnField places the current selection in a slot
func (e *Engine) PlaceOnField(slotID string) error {
	p, err := e.selection()
	if err != nil {
		return err
	}
	if err := e.board.PlaceOnField(slotID, p); err != nil {
		return err
	}
	e.current = nil
	e.boardChanged()
	return nil
}

// PlaceOnBench places the current selection on the bench
func (e *Engine) PlaceOnBench() error {
	p, err := e.selection()
	if err != nil {
		return err
	}
	if err := e.board.PlaceOnBench(p); err != nil {
		return err
	}
	e.current = nil
	e.boardChanged()
	return nil
}

func (e *Engine) selection() (models.Player, error) {
	if err := e.requireInProgress(); err != nil {
		return models.Player{}, err
	}
	if e.current == nil {
		return models.Player{}, ErrNoCurrentSelection
	}
	return *e.current, nil
}

// SwapFieldSlots exchanges two slot occupants
func (e *Engine) SwapFieldSlots(fromID, toID string) error {
	return e.boardCommand(func(b *Board) error { return b.SwapFieldSlots(fromID, toID) })
}

// MoveBenchToField moves a benched player into a slot
func (e *Engine) MoveBenchToField(playerID int, slotID string) error {
	return e.boardCommand(func(b *Board) error { return b.MoveBenchToField(playerID, slotID) })
}

// MoveFieldToBench benches a player from a slot
func (e *Engine) MoveFieldToBench(playerID int, slotID string) error {
	return e.boardCommand(func(b *Board) error { return b.MoveFieldToBench(playerID, slotID) })
}

// SetFormation switches the current manager's formation for this turn
func (e *Engine) SetFormation(name string) error {
	return e.boardCommand(func(b *Board) error { return b.SetFormation(name) })
}

func (e *Engine) boardCommand(fn func(*Board) error) error {
	if err := e.requireInProgress(); err != nil {
		return err
	}
	if err := fn(e.board); err != nil {
		return err
	}
	e.boardChanged()
	return nil
}

// Undo reverts the last action of this turn. Undoing a fresh placement
// returns that player to hand unless another player is already picked.
func (e *Engine) Undo() (Action, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	a, err := e.board.UndoLast()
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			e.log.Error("Undo rejected", "error", err, "manager_index", e.turn.ManagerIndex)
		}
		return nil, err
	}

	// a newer pick already in hand wins; the undone player just leaves the board
	if e.current == nil {
		switch act := a.(type) {
		case PlaceOnField:
			e.current = playerPtr(act.Player)
		case PlaceOnBench:
			e.current = playerPtr(act.Player)
		}
	}

	e.emit(BoardChanged{ManagerIndex: e.turn.ManagerIndex, Action: Describe(a), Undo: true})
	return a, nil
}

func (e *Engine) boardChanged() {
	last, ok := e.board.history.peek()
	if !ok {
		return
	}
	e.emit(BoardChanged{ManagerIndex: e.turn.ManagerIndex, Action: Describe(last)})
}

// FinishTurn commits the board to the current manager's roster, marks the
// players drafted and hands the clock to the next manager.
func (e *Engine) FinishTurn() ([]models.PickRecord, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	placements := e.board.Placements()
	if len(placements) == 0 {
		return nil, ErrNoPlacements
	}

	idx := e.turn.ManagerIndex
	mgr := &e.managers[idx]
	committed := make([]models.PickRecord, 0, len(placements))
	for _, pl := range placements {
		e.catalog.MarkDrafted(pl.Player.ID)
		if mgr.HasPlayer(pl.Player.ID) {
			continue
		}
		mgr.Roster = append(mgr.Roster, pl.Player)
		rec := models.PickRecord{
			Overall:      len(e.picks) + 1,
			Round:        e.turn.Round,
			ManagerIndex: idx,
			ManagerName:  mgr.Name,
			PlayerID:     pl.Player.ID,
			PlayerName:   pl.Player.DisplayName(),
			SlotID:       pl.SlotID,
			Bench:        pl.SlotID == "",
		}
		e.picks = append(e.picks, rec)
		committed = append(committed, rec)
	}
	mgr.Formation = e.board.Formation()

	round := e.turn.Round
	e.turn = Advance(e.turn)
	e.log.Info("Turn finished", "manager", mgr.Name, "round", round, "picks", len(committed))

	if e.turn.IsComplete() {
		e.complete()
		e.emit(TurnFinished{ManagerIndex: idx, ManagerName: mgr.Name, Round: round, Picks: committed, Next: e.turn})
		e.emit(DraftCompleted{Turn: e.turn})
		return committed, nil
	}

	if err := e.startTurn(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}
	e.emit(TurnFinished{ManagerIndex: idx, ManagerName: mgr.Name, Round: round, Picks: committed, Next: e.turn})
	return committed, nil
}

// FinishDraftEarly completes the draft now, discarding this turn's board
func (e *Engine) FinishDraftEarly() error {
	if err := e.requireInProgress(); err != nil {
		return err
	}
	e.turn = ForceComplete(e.turn)
	e.complete()
	e.log.Info("Draft finished early", "round", e.turn.Round)
	e.emit(DraftCompleted{Early: true, Turn: e.turn})
	return nil
}

func (e *Engine) complete() {
	e.status = StatusComplete
	e.board = nil
	e.current = nil
}

func (e *Engine) emit(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

// IsComplete reports whether the draft has ended
func (e *Engine) IsComplete() bool {
	return e.status == StatusComplete
}

// Status is the lifecycle stage
func (e *Engine) Status() Status {
	return e.status
}

// Turn is the current ledger state
func (e *Engine) Turn() TurnState {
	return e.turn
}

// Managers returns a copy of every manager and roster
func (e *Engine) Managers() []models.Manager {
	out := make([]models.Manager, len(e.managers))
	for i, m := range e.managers {
		m.Roster = append([]models.Player{}, m.Roster...)
		out[i] = m
	}
	return out
}

// CurrentManager is the manager on the clock, false outside a running draft
func (e *Engine) CurrentManager() (models.Manager, bool) {
	if e.status != StatusInProgress {
		return models.Manager{}, false
	}
	m := e.managers[e.turn.ManagerIndex]
	m.Roster = append([]models.Player{}, m.Roster...)
	return m, true
}

// CurrentPick is the selected, not yet placed player
func (e *Engine) CurrentPick() *models.Player {
	return clonePtr(e.current)
}

// Picks returns every committed pick in draft order
func (e *Engine) Picks() []models.PickRecord {
	return append([]models.PickRecord{}, e.picks...)
}

// Board exposes the live board, nil when no turn is running
func (e *Engine) Board() *Board {
	return e.board
}

// CanFinishTurn reports whether at least one player has been placed
func (e *Engine) CanFinishTurn() bool {
	return e.status == StatusInProgress && len(e.board.Placements()) > 0
}

// CanUndo reports whether this turn has an action to revert
func (e *Engine) CanUndo() bool {
	return e.status == StatusInProgress && e.board.CanUndo()
}

// View is a read-only picture of the whole draft for clients
type View struct {
	Status          Status              `json:"status"`
	Turn            TurnState           `json:"turn"`
	Progress        float64             `json:"progress"`
	Managers        []models.Manager    `json:"managers"`
	CurrentManager  *models.Manager     `json:"currentManager,omitempty"`
	Formation       string              `json:"formation,omitempty"`
	Slots           []models.FieldSlot  `json:"slots"`
	Bench           []models.Player     `json:"bench"`
	BenchCapacity   int                 `json:"benchCapacity"`
	CurrentPick     *models.Player      `json:"currentPick,omitempty"`
	PlacedPlayerIDs []int               `json:"placedPlayerIds"`
	History         []ActionView        `json:"history"`
	CanFinishTurn   bool                `json:"canFinishTurn"`
	CanUndo         bool                `json:"canUndo"`
	Picks           []models.PickRecord `json:"picks"`
}

// View snapshots the engine for presentation
func (e *Engine) View() View {
	v := View{
		Status:          e.status,
		Turn:            e.turn,
		Progress:        e.turn.Progress(),
		Managers:        e.Managers(),
		Slots:           []models.FieldSlot{},
		Bench:           []models.Player{},
		BenchCapacity:   BenchCapacity,
		CurrentPick:     e.CurrentPick(),
		PlacedPlayerIDs: []int{},
		History:         []ActionView{},
		CanFinishTurn:   e.CanFinishTurn(),
		CanUndo:         e.CanUndo(),
		Picks:           e.Picks(),
	}
	if m, ok := e.CurrentManager(); ok {
		v.CurrentManager = &m
	}
	if e.board != nil {
		v.Formation = e.board.Formation()
		v.Slots = e.board.Slots()
		v.Bench = e.board.Bench()
		v.PlacedPlayerIDs = e.board.PlacedPlayerIDs()
		for _, a := range e.board.History() {
			v.History = append(v.History, Describe(a))
		}
	}
	return v
}
