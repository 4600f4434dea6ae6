package handlers

import (
	"context"
	"net/http"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/session"
)

type createDraftRequest struct {
	Managers  []string `json:"managers" validate:"required,min=1,max=16,dive,required,max=40"`
	MaxRounds int      `json:"maxRounds" validate:"omitempty,min=1,max=50"`
	Formation string   `json:"formation" validate:"omitempty,max=32"`
}

type pickRequest struct {
	PlayerID int `json:"playerId" validate:"required,gt=0"`
}

type placeFieldRequest struct {
	SlotID string `json:"slotId" validate:"required,max=16"`
}

type swapRequest struct {
	FromSlotID string `json:"fromSlotId" validate:"required,max=16"`
	ToSlotID   string `json:"toSlotId" validate:"required,max=16,nefield=FromSlotID"`
}

type moveRequest struct {
	PlayerID int    `json:"playerId" validate:"required,gt=0"`
	SlotID   string `json:"slotId" validate:"required,max=16"`
}

type formationRequest struct {
	Formation string `json:"formation" validate:"required,max=32"`
}

// CreateDraftResponse carries the new id with the opening view
type CreateDraftResponse struct {
	ID    string     `json:"id"`
	Draft draft.View `json:"draft"`
}

// ListDrafts returns stored drafts, most recently updated first
func (h *APIHandlers) ListDrafts(w http.ResponseWriter, r *http.Request) {
	list, err := h.drafts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateDraft starts a new draft
func (h *APIHandlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, view, err := h.drafts.Create(r.Context(), session.CreateRequest{
		Managers:  req.Managers,
		MaxRounds: req.MaxRounds,
		Formation: req.Formation,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Draft created via API", "draft_id", id, "user", actor(r))
	writeJSON(w, http.StatusCreated, CreateDraftResponse{ID: id, Draft: view})
}

// GetDraft returns the current view of a draft
func (h *APIHandlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	view, err := h.drafts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteDraft removes a draft everywhere
func (h *APIHandlers) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	if err := h.drafts.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Draft deleted via API", "draft_id", id, "user", actor(r))
	w.WriteHeader(http.StatusNoContent)
}

// DraftPlayers lists the pool as seen by one draft; drafted=true lists taken players
func (h *APIHandlers) DraftPlayers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	players, err := h.drafts.Players(r.Context(), id, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// DraftSummary returns every squad ordered by rating
func (h *APIHandlers) DraftSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	summary, err := h.drafts.Summary(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// run executes one draft command and answers with the resulting view
func (h *APIHandlers) run(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, id string) (draft.View, error)) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	view, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Debug("Draft command", "command", name, "draft_id", id, "user", actor(r))
	writeJSON(w, http.StatusOK, view)
}

// Pick selects a player for the manager on the clock
func (h *APIHandlers) Pick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, "pick", func(ctx context.Context, id string) (draft.View, error) {
		return h.drafts.Pick(ctx, id, req.PlayerID)
	})
}

// PlaceOnField puts the selected player into a slot
func (h *APIHandlers) PlaceOnField(w http.ResponseWriter, r *http.Request) {
	var req placeFieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, "place_on_field", func(ctx context.Context, id string) (draft.View, error) {
		return h.drafts.PlaceOnField(ctx, id, req.SlotID)
	})
}

// PlaceOnBench puts the selected player on the bench
func (h *APIHandlers) PlaceOnBench(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "place_on_bench", h.drafts.PlaceOnBench)
}

// SwapFieldSlots exchanges two slots
func (h *APIHandlers) SwapFieldSlots(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, "swap_field_slots", func(ctx context.Context, id string) (draft.View, error) {
		return h.drafts.SwapFieldSlots(ctx, id, req.FromSlotID, req.ToSlotID)
	})
}

// MoveBenchToField promotes a bench player into a slot
func (h *APIHandlers) MoveBenchToField(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, "move_bench_to_field", func(ctx context.Context, id string) (draft.View, error) {
		return h.drafts.MoveBenchToField(ctx, id, req.PlayerID, req.SlotID)
	})
}

// MoveFieldToBench demotes a field player
func (h *APIHandlers) MoveFieldToBench(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, "move_field_to_bench", func(ctx context.Context, id string) (draft.View, error) {
		return h.drafts.MoveFieldToBench(ctx, id, req.PlayerID, req.SlotID)
	})
}

// SetFormation changes the current manager's formation
func (h *APIHandlers) SetFormation(w http.ResponseWriter, r *http.Request) {
	var req formationRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.run(w, r, "set_formation", func(ctx context.Context, id string) (draft.View, error) {
		return h.drafts.SetFormation(ctx, id, req.Formation)
	})
}

// Undo reverts the last board action of the turn
func (h *APIHandlers) Undo(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "undo", h.drafts.Undo)
}

// FinishTurn commits the turn and hands over to the next manager
func (h *APIHandlers) FinishTurn(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "finish_turn", h.drafts.FinishTurn)
}

// FinishDraft ends the draft early
func (h *APIHandlers) FinishDraft(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "finish_draft", h.drafts.FinishEarly)
}
