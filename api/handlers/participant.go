package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/openroom/roomchat-api/api"
	"github.com/openroom/roomchat-api/config"
	"github.com/openroom/roomchat-api/models"
	"github.com/openroom/roomchat-api/room"
)

// Participant struct for handling participant operations
type Participant struct {
	Engine  *room.Engine
	Timeout time.Duration
}

// JoinHandler registers a new participant in the room
func (p Participant) JoinHandler(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context(), p.Timeout)
	defer cancel()

	participant, err := p.Engine.Join(ctx, req.Name)
	if err != nil {
		engineError(w, err)
		return
	}

	b, err := json.Marshal(participant)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ListHandler returns everyone currently in the room
func (p Participant) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context(), p.Timeout)
	defer cancel()

	participants, err := p.Engine.Participants(ctx)
	if err != nil {
		engineError(w, err)
		return
	}

	b, err := json.Marshal(participants)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StatusHandler refreshes the caller's liveness timer. The caller identity
// rides in the User header.
func (p Participant) StatusHandler(w http.ResponseWriter, r *http.Request) {
	name := r.Header.Get("User")

	ctx, cancel := api.WithQueryTimeout(r.Context(), p.Timeout)
	defer cancel()

	if err := p.Engine.Heartbeat(ctx, name); err != nil {
		engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
