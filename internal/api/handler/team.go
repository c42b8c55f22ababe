package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventgames/internal/api/request"
	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/services/admin"
	"github.com/mcoot/eventgames/internal/services/registration"
)

// TeamHandler handles team roster endpoints
type TeamHandler struct {
	registration *registration.Service
	admin        *admin.Service
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(registration *registration.Service, admin *admin.Service) *TeamHandler {
	return &TeamHandler{
		registration: registration,
		admin:        admin,
	}
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.registration.Teams(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamsFromModel(teams))
}

// Save handles PUT /api/v1/admin/teams/{name}
func (h *TeamHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req request.SaveTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	saved, err := h.admin.SaveTeam(r.Context(), admin.TeamUpdate{
		Name:      mux.Vars(r)["name"],
		NewName:   req.Name,
		MediaPath: req.MediaPath,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamFromModel(saved))
}

// Delete handles DELETE /api/v1/admin/teams/{name}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteTeam(r.Context(), mux.Vars(r)["name"]); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
