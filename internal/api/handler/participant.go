package handler

import (
	"net/http"

	"github.com/mcoot/eventgames/internal/api/request"
	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/services/progress"
	"github.com/mcoot/eventgames/internal/services/registration"
	"github.com/mcoot/eventgames/internal/services/session"
)

// ParticipantHandler handles participant and session endpoints
type ParticipantHandler struct {
	registration *registration.Service
	resolver     *progress.Resolver
	orchestrator *session.Orchestrator
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(
	registration *registration.Service,
	resolver *progress.Resolver,
	orchestrator *session.Orchestrator,
) *ParticipantHandler {
	return &ParticipantHandler{
		registration: registration,
		resolver:     resolver,
		orchestrator: orchestrator,
	}
}

// Register handles POST /api/v1/participants
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterParticipantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}
	if req.Team == "" {
		WriteError(w, NewInvalidRequestError("team is required"))
		return
	}

	p, err := h.registration.Register(r.Context(), registration.Request{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Team:        req.Team,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ParticipantFromModel(p))
}

// Get handles GET /api/v1/participants/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.registration.Get(r.Context(), participantID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(p))
}

// Played handles GET /api/v1/participants/{id}/played
func (h *ParticipantHandler) Played(w http.ResponseWriter, r *http.Request) {
	id := participantID(r)
	if _, err := h.registration.Get(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	played, err := h.resolver.ResolvePlayed(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayedResponse{
		ParticipantID: string(id),
		Played:        response.KindStrings(played.Sorted()),
	})
}

// Results handles GET /api/v1/participants/{id}/results
func (h *ParticipantHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.registration.Results(r.Context(), participantID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultsFromModel(results))
}

// Session handles GET /api/v1/participants/{id}/session
func (h *ParticipantHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.orchestrator.Progress(r.Context(), participantID(r), orderParam(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}
