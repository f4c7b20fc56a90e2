package databases

// go generate: mockery --name MessageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openroom/roomchat-api/models"
)

const messageCollectionName = "messages"

// MessageDatabase contains the methods to use with the message database
type MessageDatabase interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error)
	InsertOne(ctx context.Context, message models.Message) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
}

type messageDatabase struct {
	db DatabaseHelper
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper) MessageDatabase {
	return &messageDatabase{
		db: db,
	}
}

func (m *messageDatabase) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	return m.db.Collection(messageCollectionName).FindOne(ctx, filter)
}

func (m *messageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorHelper, error) {
	return m.db.Collection(messageCollectionName).Find(ctx, filter, opts...)
}

func (m *messageDatabase) InsertOne(ctx context.Context, message models.Message) (*mongo.InsertOneResult, error) {
	return m.db.Collection(messageCollectionName).InsertOne(ctx, message)
}

func (m *messageDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return m.db.Collection(messageCollectionName).UpdateOne(ctx, filter, update)
}

func (m *messageDatabase) DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	return m.db.Collection(messageCollectionName).DeleteOne(ctx, filter)
}
