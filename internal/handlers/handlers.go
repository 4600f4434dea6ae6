// Package handlers exposes the draft sessions and the player catalog over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/auth"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/catalog"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/session"
)

const maxBodyBytes = 64 << 10

// PopularitySource answers the most-drafted query
type PopularitySource interface {
	MostDrafted(ctx context.Context, limit int) ([]models.PlayerPopularity, error)
}

// APIHandlers contains all API handler methods
type APIHandlers struct {
	drafts     *session.Service
	catalog    *catalog.Catalog
	formations *formation.Table
	pubsub     *pubsub.PubSub
	stats      PopularitySource
	validate   *validator.Validate
	upgrader   websocket.Upgrader
	origins    []string
}

// NewAPIHandlers creates a new API handlers instance. stats may be nil.
func NewAPIHandlers(drafts *session.Service, cat *catalog.Catalog, formations *formation.Table, ps *pubsub.PubSub, stats PopularitySource) *APIHandlers {
	h := &APIHandlers{
		drafts:     drafts,
		catalog:    cat,
		formations: formations,
		pubsub:     ps,
		stats:      stats,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeValidation     = "VALIDATION_FAILED"
	codeNotFound       = "NOT_FOUND"
	codeUnavailable    = "UNAVAILABLE"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError maps a session or engine error onto a status and a stable code
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := session.Classify(err)
	status := http.StatusInternalServerError
	switch kind {
	case session.KindNotFound:
		status = http.StatusNotFound
	case session.KindInvalid:
		status = http.StatusBadRequest
	case session.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// decode reads a JSON body into v and validates its struct tags
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Code:    codeInvalidRequest,
			Details: err.Error(),
		})
		return false
	}

	if err := h.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    codeValidation,
			Details: describeValidation(err),
		})
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			details.WriteString(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			details.WriteString(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "gt":
			details.WriteString(fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "nefield":
			details.WriteString(fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return details.String()
}

// draftID reads the {id} path parameter; malformed ids can never exist
func (h *APIHandlers) draftID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := h.validate.Var(id, "required,uuid"); err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: session.ErrDraftNotFound.Error(), Code: session.CodeDraftNotFound})
		return "", false
	}
	return id, true
}

// actor names the signed-in user for logs
func actor(r *http.Request) string {
	if u := auth.GetUser(r); u != nil {
		return u.Username
	}
	return "anonymous"
}
