package draft

import "github.com/Billy-Davies-2/fc-draft-simulator/internal/models"

// Action is one reversible placement command applied to a Board. The set of
// implementations is closed.
type Action interface {
	isAction()
	Kind() string
}

// PlaceOnField put the selected player in a slot. Displaced is the previous
// occupant, which went to the bench tail.
type PlaceOnField struct {
	Player    models.Player
	SlotID    string
	Displaced *models.Player
}

// PlaceOnBench appended the selected player to the bench
type PlaceOnBench struct {
	Player models.Player
}

// MoveBenchToField took a bench player (from BenchIndex) into a slot
type MoveBenchToField struct {
	Player     models.Player
	SlotID     string
	BenchIndex int
	Displaced  *models.Player
}

// MoveFieldToBench took a slot occupant to the bench tail
type MoveFieldToBench struct {
	Player models.Player
	SlotID string
}

// SwapFieldSlots exchanged the occupants of two slots. PlayerB is nil when
// the target was empty.
type SwapFieldSlots struct {
	SourceSlotID string
	TargetSlotID string
	PlayerA      models.Player
	PlayerB      *models.Player
}

// ChangeFormation rebuilt the slots for a new formation. The prior layout is
// kept so the change can be reverted exactly.
type ChangeFormation struct {
	From  string
	To    string
	tags  []string
	slots []models.FieldSlot
	bench []models.Player
}

func (PlaceOnField) isAction()     {}
func (PlaceOnBench) isAction()     {}
func (MoveBenchToField) isAction() {}
func (MoveFieldToBench) isAction() {}
func (SwapFieldSlots) isAction()   {}
func (ChangeFormation) isAction()  {}

func (PlaceOnField) Kind() string     { return "place_on_field" }
func (PlaceOnBench) Kind() string     { return "place_on_bench" }
func (MoveBenchToField) Kind() string { return "move_bench_to_field" }
func (MoveFieldToBench) Kind() string { return "move_field_to_bench" }
func (SwapFieldSlots) Kind() string   { return "swap_field_slots" }
func (ChangeFormation) Kind() string  { return "change_formation" }

// ActionView is the wire form of an action
type ActionView struct {
	Kind          string `json:"kind"`
	PlayerID      int    `json:"playerId,omitempty"`
	SlotID        string `json:"slotId,omitempty"`
	TargetSlotID  string `json:"targetSlotId,omitempty"`
	OtherPlayerID int    `json:"otherPlayerId,omitempty"`
	Formation     string `json:"formation,omitempty"`
}

// Describe flattens an action for clients
func Describe(a Action) ActionView {
	v := ActionView{Kind: a.Kind()}
	switch act := a.(type) {
	case PlaceOnField:
		v.PlayerID, v.SlotID = act.Player.ID, act.SlotID
		if act.Displaced != nil {
			v.OtherPlayerID = act.Displaced.ID
		}
	case PlaceOnBench:
		v.PlayerID = act.Player.ID
	case MoveBenchToField:
		v.PlayerID, v.SlotID = act.Player.ID, act.SlotID
		if act.Displaced != nil {
			v.OtherPlayerID = act.Displaced.ID
		}
	case MoveFieldToBench:
		v.PlayerID, v.SlotID = act.Player.ID, act.SlotID
	case SwapFieldSlots:
		v.PlayerID, v.SlotID, v.TargetSlotID = act.PlayerA.ID, act.SourceSlotID, act.TargetSlotID
		if act.PlayerB != nil {
			v.OtherPlayerID = act.PlayerB.ID
		}
	case ChangeFormation:
		v.Formation = act.To
	}
	return v
}

// History is the per-turn log of applied actions, most recent last
type History struct {
	entries []Action
}

func (h *History) push(a Action) {
	h.entries = append(h.entries, a)
}

func (h *History) peek() (Action, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) pop() {
	h.entries = h.entries[:len(h.entries)-1]
}

// Len is the number of undoable actions
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns the actions oldest first
func (h *History) Entries() []Action {
	return append([]Action(nil), h.entries...)
}
