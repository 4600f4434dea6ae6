package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/catalog"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// ListFormations returns every formation with resolved slot ids and pitch coordinates
func (h *APIHandlers) ListFormations(w http.ResponseWriter, r *http.Request) {
	names := h.formations.Names()
	layouts := make([]formation.Layout, 0, len(names))
	for _, name := range names {
		if l, ok := h.formations.Layout(name); ok {
			layouts = append(layouts, l)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":    formation.Default,
		"formations": layouts,
	})
}

// ListPlayers returns the full catalog filtered by position, team and nationality
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	q.Drafted = false
	writeJSON(w, http.StatusOK, h.catalog.Query(q))
}

// GetPlayerProfile returns a player with headline stat averages
func (h *APIHandlers) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "player id must be a positive integer", Code: codeInvalidRequest})
		return
	}

	player, ok := h.catalog.Lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "player not found", Code: "PLAYER_NOT_FOUND"})
		return
	}
	writeJSON(w, http.StatusOK, models.NewPlayerProfile(player))
}

// ListTeams returns every club in the catalog
func (h *APIHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Teams())
}

// ListNationalities returns every nationality in the catalog
func (h *APIHandlers) ListNationalities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Nationalities())
}

// MostDrafted returns the players picked most often across all drafts
func (h *APIHandlers) MostDrafted(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "pick analytics not configured", Code: codeUnavailable})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100", Code: codeInvalidRequest})
			return
		}
		limit = n
	}

	out, err := h.stats.MostDrafted(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []models.PlayerPopularity{}
	}
	writeJSON(w, http.StatusOK, out)
}

// parseQuery reads the player table filters from the query string
func parseQuery(w http.ResponseWriter, r *http.Request) (catalog.Query, bool) {
	v := r.URL.Query()
	q := catalog.Query{
		Position: v.Get("position"),
		Search:   v.Get("search"),
	}

	for key, dst := range map[string]*int{"team": &q.TeamID, "nationality": &q.NationalityID} {
		raw := v.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: key + " must be an integer id", Code: codeInvalidRequest})
			return q, false
		}
		*dst = n
	}

	if raw := v.Get("drafted"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "drafted must be true or false", Code: codeInvalidRequest})
			return q, false
		}
		q.Drafted = b
	}
	return q, true
}
