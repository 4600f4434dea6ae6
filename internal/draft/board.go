package draft

import (
	"fmt"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// BenchCapacity is the most players the bench accepts through PlaceOnBench
// and MoveFieldToBench. Displacement and formation changes may exceed it.
const BenchCapacity = 7

// FormationTable resolves a formation name to its ordered position tags
type FormationTable interface {
	SlotsFor(name string) ([]string, bool)
}

// Board is the field and bench of the manager on the clock. Every command
// either applies completely and is logged, or fails without touching state.
type Board struct {
	formations FormationTable
	formation  string
	tags       []string
	slots      []models.FieldSlot
	bench      []models.Player
	history    History
}

// NewBoard lays out an empty board for the named formation
func NewBoard(formations FormationTable, name string) (*Board, error) {
	tags, ok := formations.SlotsFor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormation, name)
	}
	return &Board{
		formations: formations,
		formation:  name,
		tags:       tags,
		slots:      emptySlots(tags),
		bench:      []models.Player{},
	}, nil
}

func emptySlots(tags []string) []models.FieldSlot {
	ids := formation.SlotIDs(tags)
	slots := make([]models.FieldSlot, len(tags))
	for i, tag := range tags {
		slots[i] = models.FieldSlot{ID: ids[i], Tag: tag}
	}
	return slots
}

// Formation is the active formation name
func (b *Board) Formation() string {
	return b.formation
}

// Slots returns a copy of the field slots in formation order
func (b *Board) Slots() []models.FieldSlot {
	return copySlots(b.slots)
}

// Bench returns a copy of the bench in order
func (b *Board) Bench() []models.Player {
	return append([]models.Player{}, b.bench...)
}

// History returns the actions applied this turn, oldest first
func (b *Board) History() []Action {
	return b.history.Entries()
}

// CanUndo reports whether any action is logged
func (b *Board) CanUndo() bool {
	return b.history.Len() > 0
}

// Contains reports whether the player is on the field or the bench
func (b *Board) Contains(playerID int) bool {
	return b.slotOf(playerID) >= 0 || b.benchIndex(playerID) >= 0
}

// Placement is a board occupant with where it sits
type Placement struct {
	Player models.Player
	SlotID string
}

// Placements lists field occupants in slot order followed by the bench
func (b *Board) Placements() []Placement {
	out := make([]Placement, 0, len(b.slots)+len(b.bench))
	for _, s := range b.slots {
		if s.Occupant != nil {
			out = append(out, Placement{Player: *s.Occupant, SlotID: s.ID})
		}
	}
	for _, p := range b.bench {
		out = append(out, Placement{Player: p})
	}
	return out
}

// PlacedPlayerIDs lists the ids of every player on the board
func (b *Board) PlacedPlayerIDs() []int {
	placements := b.Placements()
	ids := make([]int, len(placements))
	for i, p := range placements {
		ids[i] = p.Player.ID
	}
	return ids
}

// PlaceOnField puts p in the slot, sending any occupant to the bench tail
func (b *Board) PlaceOnField(slotID string, p models.Player) error {
	i := b.slotIndex(slotID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	if b.Contains(p.ID) {
		return fmt.Errorf("%w: %d", ErrAlreadyPlaced, p.ID)
	}

	displaced := b.slots[i].Occupant
	if displaced != nil {
		b.bench = append(b.bench, *displaced)
	}
	b.slots[i].Occupant = playerPtr(p)

	b.history.push(PlaceOnField{Player: p, SlotID: slotID, Displaced: clonePtr(displaced)})
	return nil
}

// PlaceOnBench appends p to the bench
func (b *Board) PlaceOnBench(p models.Player) error {
	if len(b.bench) >= BenchCapacity {
		return ErrBenchFull
	}
	if b.Contains(p.ID) {
		return fmt.Errorf("%w: %d", ErrAlreadyPlaced, p.ID)
	}

	b.bench = append(b.bench, p)
	b.history.push(PlaceOnBench{Player: p})
	return nil
}

// SwapFieldSlots exchanges two slot occupants. The source must be occupied.
func (b *Board) SwapFieldSlots(fromID, toID string) error {
	from := b.slotIndex(fromID)
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, fromID)
	}
	to := b.slotIndex(toID)
	if to < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, toID)
	}
	if from == to {
		return fmt.Errorf("%w: cannot swap slot %q with itself", ErrInvalidMove, fromID)
	}
	a := b.slots[from].Occupant
	if a == nil {
		return fmt.Errorf("%w: slot %q is empty", ErrPlayerNotFound, fromID)
	}
	other := b.slots[to].Occupant

	b.slots[from].Occupant, b.slots[to].Occupant = other, a
	b.history.push(SwapFieldSlots{SourceSlotID: fromID, TargetSlotID: toID, PlayerA: *a, PlayerB: clonePtr(other)})
	return nil
}

// MoveBenchToField moves a bench player into a slot, benching any occupant
func (b *Board) MoveBenchToField(playerID int, slotID string) error {
	bi := b.benchIndex(playerID)
	if bi < 0 {
		return fmt.Errorf("%w: %d is not on the bench", ErrPlayerNotFound, playerID)
	}
	i := b.slotIndex(slotID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}

	p := b.removeBenchAt(bi)
	displaced := b.slots[i].Occupant
	if displaced != nil {
		b.bench = append(b.bench, *displaced)
	}
	b.slots[i].Occupant = playerPtr(p)

	b.history.push(MoveBenchToField{Player: p, SlotID: slotID, BenchIndex: bi, Displaced: clonePtr(displaced)})
	return nil
}

// MoveFieldToBench moves a slot occupant to the bench tail
func (b *Board) MoveFieldToBench(playerID int, slotID string) error {
	i := b.slotIndex(slotID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	occ := b.slots[i].Occupant
	if occ == nil || occ.ID != playerID {
		return fmt.Errorf("%w: %d is not in slot %q", ErrPlayerNotFound, playerID, slotID)
	}
	if len(b.bench) >= BenchCapacity {
		return ErrBenchFull
	}

	p := *occ
	b.slots[i].Occupant = nil
	b.bench = append(b.bench, p)
	b.history.push(MoveFieldToBench{Player: p, SlotID: slotID})
	return nil
}

// SetFormation switches formation. Each occupant keeps the slot with the same
// position tag and ordinal when the new formation has one, otherwise takes the
// first free slot with its tag. The rest go to the bench tail in old slot order.
func (b *Board) SetFormation(name string) error {
	tags, ok := b.formations.SlotsFor(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormation, name)
	}

	prev := ChangeFormation{
		From:  b.formation,
		To:    name,
		tags:  b.tags,
		slots: copySlots(b.slots),
		bench: append([]models.Player{}, b.bench...),
	}

	type key struct {
		tag string
		ord int
	}
	next := emptySlots(tags)
	index := make(map[key]int, len(tags))
	for i, ord := range formation.Ordinals(tags) {
		index[key{formation.Label(next[i].ID), ord}] = i
	}

	var unmatched []int
	for i, ord := range formation.Ordinals(b.tags) {
		occ := b.slots[i].Occupant
		if occ == nil {
			continue
		}
		if j, ok := index[key{formation.Label(b.slots[i].ID), ord}]; ok {
			next[j].Occupant = playerPtr(*occ)
			continue
		}
		unmatched = append(unmatched, i)
	}

	bench := append([]models.Player{}, b.bench...)
	for _, i := range unmatched {
		occ := b.slots[i].Occupant
		if j := freeSlotWithTag(next, formation.Label(b.slots[i].ID)); j >= 0 {
			next[j].Occupant = playerPtr(*occ)
			continue
		}
		bench = append(bench, *occ)
	}

	b.formation = name
	b.tags = tags
	b.slots = next
	b.bench = bench
	b.history.push(prev)
	return nil
}

func freeSlotWithTag(slots []models.FieldSlot, tag string) int {
	for j := range slots {
		if slots[j].Occupant == nil && formation.Label(slots[j].ID) == tag {
			return j
		}
	}
	return -1
}

// UndoLast reverts the most recent action and returns it
func (b *Board) UndoLast() (Action, error) {
	last, ok := b.history.peek()
	if !ok {
		return nil, ErrNothingToUndo
	}
	if err := b.revert(last); err != nil {
		return nil, err
	}
	b.history.pop()
	return last, nil
}

// revert checks the board matches what the action left behind before
// changing anything, so a failed revert leaves the board as it was.
func (b *Board) revert(a Action) error {
	switch act := a.(type) {
	case PlaceOnField:
		i, err := b.occupiedBy(act.SlotID, act.Player.ID)
		if err != nil {
			return err
		}
		if act.Displaced == nil {
			b.slots[i].Occupant = nil
			return nil
		}
		bi, err := b.benchTail(act.Displaced.ID)
		if err != nil {
			return err
		}
		b.removeBenchAt(bi)
		b.slots[i].Occupant = playerPtr(*act.Displaced)

	case PlaceOnBench:
		bi, err := b.benchTail(act.Player.ID)
		if err != nil {
			return err
		}
		b.removeBenchAt(bi)

	case MoveBenchToField:
		i, err := b.occupiedBy(act.SlotID, act.Player.ID)
		if err != nil {
			return err
		}
		if act.Displaced != nil {
			bi, err := b.benchTail(act.Displaced.ID)
			if err != nil {
				return err
			}
			b.removeBenchAt(bi)
			b.slots[i].Occupant = playerPtr(*act.Displaced)
		} else {
			b.slots[i].Occupant = nil
		}
		b.insertBenchAt(act.BenchIndex, act.Player)

	case MoveFieldToBench:
		i := b.slotIndex(act.SlotID)
		if i < 0 || b.slots[i].Occupant != nil {
			return fmt.Errorf("%w: slot %q not free to restore %d", ErrInvariantViolation, act.SlotID, act.Player.ID)
		}
		bi, err := b.benchTail(act.Player.ID)
		if err != nil {
			return err
		}
		b.removeBenchAt(bi)
		b.slots[i].Occupant = playerPtr(act.Player)

	case SwapFieldSlots:
		to, err := b.occupiedBy(act.TargetSlotID, act.PlayerA.ID)
		if err != nil {
			return err
		}
		from := b.slotIndex(act.SourceSlotID)
		if from < 0 {
			return fmt.Errorf("%w: unknown slot %q", ErrInvariantViolation, act.SourceSlotID)
		}
		b.slots[from].Occupant, b.slots[to].Occupant = b.slots[to].Occupant, b.slots[from].Occupant

	case ChangeFormation:
		if b.formation != act.To {
			return fmt.Errorf("%w: formation is %q, expected %q", ErrInvariantViolation, b.formation, act.To)
		}
		b.formation = act.From
		b.tags = act.tags
		b.slots = copySlots(act.slots)
		b.bench = append([]models.Player{}, act.bench...)

	default:
		return fmt.Errorf("%w: unknown action %T", ErrInvariantViolation, a)
	}
	return nil
}

func (b *Board) occupiedBy(slotID string, playerID int) (int, error) {
	i := b.slotIndex(slotID)
	if i < 0 || b.slots[i].Occupant == nil || b.slots[i].Occupant.ID != playerID {
		return -1, fmt.Errorf("%w: expected %d in slot %q", ErrInvariantViolation, playerID, slotID)
	}
	return i, nil
}

func (b *Board) benchTail(playerID int) (int, error) {
	last := len(b.bench) - 1
	if last < 0 || b.bench[last].ID != playerID {
		return -1, fmt.Errorf("%w: expected %d at bench tail", ErrInvariantViolation, playerID)
	}
	return last, nil
}

func (b *Board) slotIndex(id string) int {
	for i := range b.slots {
		if b.slots[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) slotOf(playerID int) int {
	for i := range b.slots {
		if occ := b.slots[i].Occupant; occ != nil && occ.ID == playerID {
			return i
		}
	}
	return -1
}

func (b *Board) benchIndex(playerID int) int {
	for i := range b.bench {
		if b.bench[i].ID == playerID {
			return i
		}
	}
	return -1
}

func (b *Board) removeBenchAt(i int) models.Player {
	p := b.bench[i]
	b.bench = append(b.bench[:i:i], b.bench[i+1:]...)
	return p
}

func (b *Board) insertBenchAt(i int, p models.Player) {
	if i > len(b.bench) {
		i = len(b.bench)
	}
	bench := make([]models.Player, 0, len(b.bench)+1)
	bench = append(bench, b.bench[:i]...)
	bench = append(bench, p)
	bench = append(bench, b.bench[i:]...)
	b.bench = bench
}

func copySlots(slots []models.FieldSlot) []models.FieldSlot {
	out := make([]models.FieldSlot, len(slots))
	for i, s := range slots {
		out[i] = models.FieldSlot{ID: s.ID, Tag: s.Tag, Occupant: clonePtr(s.Occupant)}
	}
	return out
}

func playerPtr(p models.Player) *models.Player {
	return &p
}

func clonePtr(p *models.Player) *models.Player {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
