package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openroom/roomchat-api/databases"
	"github.com/openroom/roomchat-api/models"
	"github.com/openroom/roomchat-api/sanitize"
)

// wallClock is the timestamp format stamped on messages.
const wallClock = "15:04:05"

// Store owns the message log: creation, visibility-scoped listing, and
// owner-gated edit/delete. Insertion order is _id order and every listing
// preserves it.
type Store struct {
	mdb databases.MessageDatabase
	cfg Config
}

// NewStore creates a message store over the message collection.
func NewStore(mdb databases.MessageDatabase, cfg Config) *Store {
	return &Store{mdb: mdb, cfg: cfg}
}

// Create appends a user-facing message to the log. Fields are sanitized
// before validation; presence of the sender is the engine's concern and has
// already been checked when this runs.
func (s *Store) Create(ctx context.Context, from, to, text, kind string) (models.Message, error) {
	in := messageInput{
		To:   sanitize.Clean(to),
		Text: sanitize.Clean(text),
		Kind: sanitize.Clean(kind),
	}
	if err := validateMessage(in); err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:   primitive.NewObjectID(),
		From: from,
		To:   in.To,
		Text: in.Text,
		Kind: in.Kind,
		Time: time.Now().Format(wallClock),
	}
	if _, err := s.mdb.InsertOne(ctx, msg); err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// List returns the viewer's visible subset (broadcasts plus messages to or
// from them) in insertion order. With limit > 0 and more visible messages
// than the limit, exactly the last limit entries come back, still oldest
// first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, viewer string, limit int64) ([]models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"to": s.cfg.Broadcast},
		{"to": viewer},
		{"from": viewer},
	}}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		// fetch the newest limit entries, then restore insertion order
		opts = options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(limit)
	}

	cursor, err := s.mdb.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if limit > 0 {
		messages = lo.Reverse(messages)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// Update replaces to/text/kind on the message and refreshes its timestamp.
// The write is conditional on both the id and the original sender, so the
// ownership gate and the mutation are a single document operation; a zero
// match is then split into ErrNotFound and ErrUnauthorized by a follow-up
// read. ID and from never change.
func (s *Store) Update(ctx context.Context, id, editor, to, text, kind string) (models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Message{}, ErrNotFound
	}

	in := messageInput{
		To:   sanitize.Clean(to),
		Text: sanitize.Clean(text),
		Kind: sanitize.Clean(kind),
	}
	if err := validateMessage(in); err != nil {
		return models.Message{}, err
	}

	now := time.Now().Format(wallClock)
	res, err := s.mdb.UpdateOne(ctx,
		bson.M{"_id": oid, "from": editor},
		bson.M{"$set": bson.M{"to": in.To, "text": in.Text, "kind": in.Kind, "time": now}},
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("update message %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.Message{}, s.missOrForeign(ctx, oid)
	}

	return models.Message{ID: oid, From: editor, To: in.To, Text: in.Text, Kind: in.Kind, Time: now}, nil
}

// Delete permanently removes the message, gated on ownership the same way
// Update is.
func (s *Store) Delete(ctx context.Context, id, requester string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.mdb.DeleteOne(ctx, bson.M{"_id": oid, "from": requester})
	if err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return s.missOrForeign(ctx, oid)
	}
	return nil
}

// missOrForeign decides whether a zero-match mutation hit a missing message
// or someone else's.
func (s *Store) missOrForeign(ctx context.Context, oid primitive.ObjectID) error {
	var existing models.Message
	err := s.mdb.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup message %s: %w", oid.Hex(), err)
	}
	return ErrUnauthorized
}

// notice records an engine-generated status broadcast for name.
func (s *Store) notice(ctx context.Context, name, text string) error {
	msg := models.Message{
		ID:   primitive.NewObjectID(),
		From: name,
		To:   s.cfg.Broadcast,
		Text: text,
		Kind: models.MessageKindStatus,
		Time: time.Now().Format(wallClock),
	}
	if _, err := s.mdb.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert status notice: %w", err)
	}
	return nil
}
