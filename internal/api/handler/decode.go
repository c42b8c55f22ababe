package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventgames/internal/model"
)

// maxBodyBytes caps request bodies; every request here is a small JSON object
const maxBodyBytes = 64 << 10

// decodeJSON reads a JSON body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

// participantID reads the {id} path variable
func participantID(r *http.Request) model.ParticipantID {
	return model.ParticipantID(mux.Vars(r)["id"])
}

// gameParam reads the required game query parameter
func gameParam(r *http.Request) (model.GameKind, error) {
	raw := r.URL.Query().Get("game")
	if raw == "" {
		return "", NewInvalidRequestError("game query parameter is required")
	}
	return model.ParseGameKind(raw)
}

// orderParam reads the optional comma separated order query parameter.
// Values are not validated here; the session orchestrator decides what to
// do with a bad order.
func orderParam(r *http.Request) []model.GameKind {
	raw := strings.TrimSpace(r.URL.Query().Get("order"))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	order := make([]model.GameKind, 0, len(parts))
	for _, p := range parts {
		order = append(order, model.GameKind(strings.TrimSpace(p)))
	}
	return order
}
