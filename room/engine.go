// Package room implements the presence and message exchange engine for the
// single chat room: participant identity and liveness, the message log with
// visibility scoping and owner-gated mutation, and the timed eviction sweep.
package room

import (
	"context"
	"time"

	"github.com/openroom/roomchat-api/databases"
	"github.com/openroom/roomchat-api/models"
)

// Config carries the engine's tunables.
type Config struct {
	// Broadcast is the reserved recipient visible to everyone.
	Broadcast string
	// InactivityThreshold is how long a participant may stay silent before
	// the sweep evicts them.
	InactivityThreshold time.Duration
	// NameMinLen and NameMaxLen bound display names after sanitization.
	NameMinLen int
	NameMaxLen int
}

// Engine is the composition root the boundary layer talks to. It wires the
// presence manager and the message store together and enforces the one
// cross-cutting rule: user-facing message mutations require the sender to
// be currently present, and that check belongs to the presence manager.
type Engine struct {
	cfg      Config
	presence *Presence
	messages *Store
}

// New builds an engine over the two collections.
func New(pdb databases.ParticipantDatabase, mdb databases.MessageDatabase, cfg Config) *Engine {
	store := NewStore(mdb, cfg)
	return &Engine{
		cfg:      cfg,
		presence: NewPresence(pdb, store, cfg),
		messages: store,
	}
}

// Join registers a new participant and broadcasts the join notice.
func (e *Engine) Join(ctx context.Context, name string) (models.Participant, error) {
	return e.presence.Join(ctx, name)
}

// Participants lists everyone currently present.
func (e *Engine) Participants(ctx context.Context) ([]models.Participant, error) {
	return e.presence.Participants(ctx)
}

// Heartbeat refreshes a participant's liveness timer.
func (e *Engine) Heartbeat(ctx context.Context, name string) error {
	return e.presence.Heartbeat(ctx, name)
}

// Post appends a message from sender. The presence check happens before the
// insert; an absent sender is unprocessable, never an implicit re-join.
func (e *Engine) Post(ctx context.Context, sender, to, text, kind string) (models.Message, error) {
	if err := e.requirePresent(ctx, sender); err != nil {
		return models.Message{}, err
	}
	return e.messages.Create(ctx, sender, to, text, kind)
}

// Messages returns viewer's visible subset, optionally limited to the most
// recent entries. limit <= 0 means no limit.
func (e *Engine) Messages(ctx context.Context, viewer string, limit int64) ([]models.Message, error) {
	return e.messages.List(ctx, viewer, limit)
}

// Edit rewrites a message owned by editor.
func (e *Engine) Edit(ctx context.Context, id, editor, to, text, kind string) (models.Message, error) {
	if err := e.requirePresent(ctx, editor); err != nil {
		return models.Message{}, err
	}
	return e.messages.Update(ctx, id, editor, to, text, kind)
}

// Remove deletes a message owned by requester.
func (e *Engine) Remove(ctx context.Context, id, requester string) error {
	return e.messages.Delete(ctx, id, requester)
}

// Sweep runs one eviction pass with the configured threshold and returns
// the evicted names.
func (e *Engine) Sweep(ctx context.Context) ([]string, error) {
	return e.presence.Sweep(ctx, e.cfg.InactivityThreshold)
}

func (e *Engine) requirePresent(ctx context.Context, sender string) error {
	if sender == "" {
		return &ValidationError{Violations: []FieldViolation{{Field: "from", Rule: "required"}}}
	}
	present, err := e.presence.IsPresent(ctx, sender)
	if err != nil {
		return err
	}
	if !present {
		return ErrNotPresent
	}
	return nil
}
