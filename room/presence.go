package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/openroom/roomchat-api/databases"
	"github.com/openroom/roomchat-api/models"
	"github.com/openroom/roomchat-api/sanitize"
)

// Status notice texts broadcast when a participant enters or is evicted.
const (
	JoinNoticeText  = "joined the room"
	LeaveNoticeText = "left the room"
)

// noticeWriter records engine-generated status messages; the message store
// implements it.
type noticeWriter interface {
	notice(ctx context.Context, name, text string) error
}

// Presence owns the participant lifecycle: join, heartbeat, and the
// eviction sweep. All participant state lives in the store and is reached
// only through these operations.
type Presence struct {
	pdb     databases.ParticipantDatabase
	notices noticeWriter
	cfg     Config

	// joinMu serializes joins. The upsert below is atomic per document, but
	// without a unique index two concurrent upserts on the same missing name
	// can both insert; the store contract only promises single-document
	// atomicity, so joins are serialized here.
	joinMu sync.Mutex
}

// NewPresence creates a presence manager over the participant collection.
func NewPresence(pdb databases.ParticipantDatabase, notices noticeWriter, cfg Config) *Presence {
	return &Presence{pdb: pdb, notices: notices, cfg: cfg}
}

// Join registers name as a participant. The name is sanitized and validated
// first; a name that is already present yields ErrConflict. The join notice
// is recorded after the insert; if that fails the join still stands and the
// failure is logged as a secondary condition.
func (p *Presence) Join(ctx context.Context, name string) (models.Participant, error) {
	clean := sanitize.Clean(name)
	if err := validateName(clean, p.cfg.NameMinLen, p.cfg.NameMaxLen); err != nil {
		return models.Participant{}, err
	}

	p.joinMu.Lock()
	defer p.joinMu.Unlock()

	now := time.Now().UnixMilli()
	res, err := p.pdb.UpdateOne(ctx,
		bson.M{"name": clean},
		bson.M{"$setOnInsert": bson.M{"name": clean, "lastActivity": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.Participant{}, fmt.Errorf("join upsert for %q: %w", clean, err)
	}
	if res.UpsertedCount == 0 {
		return models.Participant{}, ErrConflict
	}

	if err := p.notices.notice(ctx, clean, JoinNoticeText); err != nil {
		zap.S().Errorw("failed to record join notice",
			"name", clean,
			"error", err,
		)
	}

	return models.Participant{Name: clean, LastActivity: now}, nil
}

// Heartbeat refreshes the participant's last activity. Unknown names yield
// ErrNotFound; a heartbeat never re-joins an evicted participant.
func (p *Presence) Heartbeat(ctx context.Context, name string) error {
	res, err := p.pdb.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"lastActivity": time.Now().UnixMilli()}},
	)
	if err != nil {
		return fmt.Errorf("heartbeat for %q: %w", name, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Participants returns everyone currently in the room, order insignificant.
func (p *Presence) Participants(ctx context.Context) ([]models.Participant, error) {
	cursor, err := p.pdb.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find participants: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

// IsPresent reports whether name is currently a participant.
func (p *Presence) IsPresent(ctx context.Context, name string) (bool, error) {
	var participant models.Participant
	err := p.pdb.FindOne(ctx, bson.M{"name": name}).Decode(&participant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup participant %q: %w", name, err)
	}
	return true, nil
}

// Sweep evicts every participant whose last activity is older than
// threshold and broadcasts one leave notice per eviction. Each eviction is
// a conditional delete re-checking staleness, so a heartbeat racing the
// sweep keeps its participant alive; evictions are independent and a
// failure on one never blocks the rest. Returns the evicted names.
func (p *Presence) Sweep(ctx context.Context, threshold time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-threshold).UnixMilli()
	staleFilter := bson.M{"lastActivity": bson.M{"$lt": cutoff}}

	cursor, err := p.pdb.Find(ctx, staleFilter)
	if err != nil {
		return nil, fmt.Errorf("find stale participants: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []models.Participant
	if err := cursor.All(ctx, &stale); err != nil {
		return nil, fmt.Errorf("decode stale participants: %w", err)
	}

	evicted := []string{}
	for _, s := range stale {
		res, err := p.pdb.DeleteOne(ctx, bson.M{
			"name":         s.Name,
			"lastActivity": bson.M{"$lt": cutoff},
		})
		if err != nil {
			zap.S().Errorw("failed to evict participant",
				"name", s.Name,
				"error", err,
			)
			continue
		}
		if res.DeletedCount == 0 {
			// a heartbeat landed between the scan and the delete
			continue
		}

		evicted = append(evicted, s.Name)
		if err := p.notices.notice(ctx, s.Name, LeaveNoticeText); err != nil {
			zap.S().Errorw("failed to record leave notice",
				"name", s.Name,
				"error", err,
			)
		}
	}

	if len(evicted) > 0 {
		remaining, err := p.pdb.CountDocuments(ctx, bson.M{})
		if err != nil {
			zap.S().Errorw("failed to count remaining participants", "error", err)
		} else {
			zap.S().Infow("eviction sweep complete",
				"evicted", len(evicted),
				"remaining", remaining,
			)
		}
	}
	return evicted, nil
}
