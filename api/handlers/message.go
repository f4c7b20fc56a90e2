package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openroom/roomchat-api/api"
	"github.com/openroom/roomchat-api/config"
	"github.com/openroom/roomchat-api/models"
	"github.com/openroom/roomchat-api/room"
)

// Message struct for handling message operations
type Message struct {
	Engine  *room.Engine
	Timeout time.Duration
}

// CreateHandler appends a message from the caller named in the User header
func (m Message) CreateHandler(w http.ResponseWriter, r *http.Request) {
	from := r.Header.Get("User")

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context(), m.Timeout)
	defer cancel()

	msg, err := m.Engine.Post(ctx, from, req.To, req.Text, req.Kind)
	if err != nil {
		engineError(w, err)
		return
	}

	b, err := json.Marshal(msg)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MessagesHandler returns the caller's visible messages in insertion order.
// An optional limit query keeps only the most recent entries; limit <= 0
// means no limit.
func (m Message) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	viewer := r.Header.Get("User")

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			config.ErrorStatus("limit must be an integer", http.StatusUnprocessableEntity, w, err)
			return
		}
		limit = parsed
	}

	ctx, cancel := api.WithQueryTimeout(r.Context(), m.Timeout)
	defer cancel()

	messages, err := m.Engine.Messages(ctx, viewer, limit)
	if err != nil {
		engineError(w, err)
		return
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateHandler rewrites a message owned by the caller
func (m Message) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["message_id"]
	editor := r.Header.Get("User")

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context(), m.Timeout)
	defer cancel()

	msg, err := m.Engine.Edit(ctx, id, editor, req.To, req.Text, req.Kind)
	if err != nil {
		engineError(w, err)
		return
	}

	b, err := json.Marshal(msg)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteHandler permanently removes a message owned by the caller
func (m Message) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["message_id"]
	requester := r.Header.Get("User")

	ctx, cancel := api.WithQueryTimeout(r.Context(), m.Timeout)
	defer cancel()

	if err := m.Engine.Remove(ctx, id, requester); err != nil {
		engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
