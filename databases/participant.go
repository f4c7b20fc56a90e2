package databases

// go generate: mockery --name ParticipantDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const participantCollectionName = "participants"

// ParticipantDatabase contains the methods to use with the participant database
type ParticipantDatabase interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type participantDatabase struct {
	db DatabaseHelper
}

// NewParticipantDatabase initializes a new instance of participant database with the provided db connection
func NewParticipantDatabase(db DatabaseHelper) ParticipantDatabase {
	return &participantDatabase{
		db: db,
	}
}

func (p *participantDatabase) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	return p.db.Collection(participantCollectionName).FindOne(ctx, filter)
}

func (p *participantDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error) {
	return p.db.Collection(participantCollectionName).Find(ctx, filter, opts...)
}

func (p *participantDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return p.db.Collection(participantCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (p *participantDatabase) DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	return p.db.Collection(participantCollectionName).DeleteOne(ctx, filter)
}

func (p *participantDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return p.db.Collection(participantCollectionName).CountDocuments(ctx, filter)
}
