package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openroom/roomchat-api/databases/mocks"
	"github.com/openroom/roomchat-api/models"
)

var testConfig = Config{
	Broadcast:           "all",
	InactivityThreshold: 10 * time.Second,
	NameMinLen:          3,
	NameMaxLen:          30,
}

// noticeRecorder stands in for the message store when only the presence
// side is under test.
type noticeRecorder struct {
	names []string
	texts []string
	err   error
}

func (n *noticeRecorder) notice(_ context.Context, name, text string) error {
	if n.err != nil {
		return n.err
	}
	n.names = append(n.names, name)
	n.texts = append(n.texts, text)
	return nil
}

func TestPresence_Join(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	notices := &noticeRecorder{}
	p := NewPresence(pdb, notices, testConfig)

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	participant, err := p.Join(context.Background(), "alice")

	assert.NoError(t, err)
	assert.Equal(t, "alice", participant.Name)
	assert.NotZero(t, participant.LastActivity)
	assert.Equal(t, []string{"alice"}, notices.names)
	assert.Equal(t, []string{JoinNoticeText}, notices.texts)
}

func TestPresence_JoinSanitizesName(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	participant, err := p.Join(context.Background(), "  <b>alice</b>  ")

	assert.NoError(t, err)
	assert.Equal(t, "alice", participant.Name)
}

func TestPresence_JoinConflict(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	notices := &noticeRecorder{}
	p := NewPresence(pdb, notices, testConfig)

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 0, MatchedCount: 1}, nil)

	_, err := p.Join(context.Background(), "alice")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, notices.names)
}

func TestPresence_JoinValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rule  string
	}{
		{name: "empty", input: "", rule: "required"},
		{name: "whitespace only", input: "   ", rule: "required"},
		{name: "markup only", input: "<br/>", rule: "required"},
		{name: "too short", input: "ab", rule: "min"},
		{name: "too long", input: "abcdefghijabcdefghijabcdefghijx", rule: "max"},
		{name: "not alphanumeric", input: "al ice", rule: "alphanum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdb := &mocks.ParticipantDatabase{}
			p := NewPresence(pdb, &noticeRecorder{}, testConfig)

			_, err := p.Join(context.Background(), tt.input)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, "name", verr.Violations[0].Field)
			assert.Equal(t, tt.rule, verr.Violations[0].Rule)
			pdb.AssertNotCalled(t, "UpdateOne")
		})
	}
}

func TestPresence_JoinSurvivesNoticeFailure(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	notices := &noticeRecorder{err: errors.New("mocked-error")}
	p := NewPresence(pdb, notices, testConfig)

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	participant, err := p.Join(context.Background(), "alice")

	assert.NoError(t, err)
	assert.Equal(t, "alice", participant.Name)
}

func TestPresence_Heartbeat(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	assert.NoError(t, p.Heartbeat(context.Background(), "alice"))
}

func TestPresence_HeartbeatUnknownName(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "mallory"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	err := p.Heartbeat(context.Background(), "mallory")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPresence_Participants(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	cursor := &mocks.CursorHelper{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("Find", mock.Anything, bson.M{}).Return(cursor, nil)
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.Participant)
		*out = []models.Participant{
			{Name: "alice", LastActivity: 1},
			{Name: "bob", LastActivity: 2},
		}
	}).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)

	participants, err := p.Participants(context.Background())

	assert.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestPresence_ParticipantsEmptyRoom(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	cursor := &mocks.CursorHelper{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("Find", mock.Anything, bson.M{}).Return(cursor, nil)
	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)

	participants, err := p.Participants(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, participants)
	assert.Empty(t, participants)
}

func TestPresence_IsPresent(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	single := &mocks.SingleResultHelper{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("FindOne", mock.Anything, bson.M{"name": "alice"}).Return(single)
	single.On("Decode", mock.Anything).Return(nil)

	present, err := p.IsPresent(context.Background(), "alice")

	assert.NoError(t, err)
	assert.True(t, present)
}

func TestPresence_IsPresentUnknownName(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	single := &mocks.SingleResultHelper{}
	p := NewPresence(pdb, &noticeRecorder{}, testConfig)

	pdb.On("FindOne", mock.Anything, bson.M{"name": "mallory"}).Return(single)
	single.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	present, err := p.IsPresent(context.Background(), "mallory")

	assert.NoError(t, err)
	assert.False(t, present)
}

func TestPresence_SweepEvictsStaleParticipants(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	cursor := &mocks.CursorHelper{}
	notices := &noticeRecorder{}
	p := NewPresence(pdb, notices, testConfig)

	pdb.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.Participant)
		*out = []models.Participant{{Name: "stan", LastActivity: 1}}
	}).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	pdb.On("DeleteOne", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		return filter.(bson.M)["name"] == "stan"
	})).Return(&mongo.DeleteResult{DeletedCount: 1}, nil)
	pdb.On("CountDocuments", mock.Anything, bson.M{}).Return(int64(0), nil)

	evicted, err := p.Sweep(context.Background(), 10*time.Second)

	assert.NoError(t, err)
	assert.Equal(t, []string{"stan"}, evicted)
	assert.Equal(t, []string{"stan"}, notices.names)
	assert.Equal(t, []string{LeaveNoticeText}, notices.texts)
	pdb.AssertCalled(t, "CountDocuments", mock.Anything, bson.M{})
}

func TestPresence_SweepSkipsRacedHeartbeat(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	cursor := &mocks.CursorHelper{}
	notices := &noticeRecorder{}
	p := NewPresence(pdb, notices, testConfig)

	pdb.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.Participant)
		*out = []models.Participant{{Name: "kenny", LastActivity: 1}}
	}).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	// the conditional delete misses because a heartbeat bumped lastActivity
	pdb.On("DeleteOne", mock.Anything, mock.Anything).
		Return(&mongo.DeleteResult{DeletedCount: 0}, nil)

	evicted, err := p.Sweep(context.Background(), 10*time.Second)

	assert.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Empty(t, notices.names)
	pdb.AssertNotCalled(t, "CountDocuments")
}

func TestPresence_SweepEvictionsAreIndependent(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	cursor := &mocks.CursorHelper{}
	notices := &noticeRecorder{}
	p := NewPresence(pdb, notices, testConfig)

	pdb.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.Participant)
		*out = []models.Participant{
			{Name: "stan", LastActivity: 1},
			{Name: "kyle", LastActivity: 2},
		}
	}).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	pdb.On("DeleteOne", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		return filter.(bson.M)["name"] == "stan"
	})).Return(nil, errors.New("mocked-error"))
	pdb.On("DeleteOne", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		return filter.(bson.M)["name"] == "kyle"
	})).Return(&mongo.DeleteResult{DeletedCount: 1}, nil)
	pdb.On("CountDocuments", mock.Anything, bson.M{}).Return(int64(1), nil)

	evicted, err := p.Sweep(context.Background(), 10*time.Second)

	assert.NoError(t, err)
	assert.Equal(t, []string{"kyle"}, evicted)
}
