package handler

import (
	"net/http"

	"github.com/mcoot/eventgames/internal/api/request"
	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/services/submission"
)

// ResultHandler handles result submission
type ResultHandler struct {
	gate *submission.Gate
}

// NewResultHandler creates a new result handler
func NewResultHandler(gate *submission.Gate) *ResultHandler {
	return &ResultHandler{
		gate: gate,
	}
}

// Submit handles POST /api/v1/results.
// A repeat submission is a success with outcome already_recorded.
func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.ParticipantID == "" {
		WriteError(w, NewInvalidRequestError("participant_id is required"))
		return
	}
	if req.Game == "" {
		WriteError(w, NewInvalidRequestError("game is required"))
		return
	}
	if req.Score == nil {
		WriteError(w, NewInvalidRequestError("score is required"))
		return
	}

	kind, err := model.ParseGameKind(req.Game)
	if err != nil {
		WriteError(w, err)
		return
	}

	sub, err := h.gate.Submit(r.Context(), model.ParticipantID(req.ParticipantID), kind, *req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if sub.Outcome.Stored() {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.SubmitResultFromModel(sub))
}
