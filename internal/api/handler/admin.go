package handler

import (
	"net/http"

	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/services/admin"
)

// AdminHandler handles operator endpoints. Routes are expected behind the
// admin middleware.
type AdminHandler struct {
	admin *admin.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *admin.Service) *AdminHandler {
	return &AdminHandler{
		admin: admin,
	}
}

// ResetResults handles POST /api/v1/admin/results/reset
func (h *AdminHandler) ResetResults(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.admin.ResetResults(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResetResponse{Deleted: deleted})
}
