package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openroom/roomchat-api/api/handlers"
	"github.com/openroom/roomchat-api/databases/mocks"
	"github.com/openroom/roomchat-api/models"
)

func TestParticipant_JoinHandler(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)
	mdb.On("InsertOne", mock.Anything, mock.Anything).Return(&mongo.InsertOneResult{}, nil)

	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("POST", "/participants", bytes.NewBufferString(`{"name": "alice"}`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.JoinHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var participant models.Participant
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &participant))
	assert.Equal(t, "alice", participant.Name)
	assert.NotZero(t, participant.LastActivity)
}

func TestParticipant_JoinHandlerConflict(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 0, MatchedCount: 1}, nil)

	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("POST", "/participants", bytes.NewBufferString(`{"name": "alice"}`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.JoinHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)

	var body models.ErrorMessageResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Response, "name is already taken")
}

func TestParticipant_JoinHandlerInvalidName(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}
	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("POST", "/participants", bytes.NewBufferString(`{"name": "ab"}`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.JoinHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	pdb.AssertNotCalled(t, "UpdateOne")
}

func TestParticipant_JoinHandlerBadBody(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}
	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("POST", "/participants", bytes.NewBufferString(`{`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.JoinHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestParticipant_ListHandler(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}
	cursor := &mocks.CursorHelper{}

	pdb.On("Find", mock.Anything, bson.M{}).Return(cursor, nil)
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.Participant)
		*out = []models.Participant{{Name: "alice", LastActivity: 1}}
	}).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)

	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("GET", "/participants", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.ListHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var participants []models.Participant
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &participants))
	assert.Len(t, participants, 1)
}

func TestParticipant_StatusHandler(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("POST", "/status", nil)
	req.Header.Set("User", "alice")
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.StatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestParticipant_StatusHandlerUnknownName(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "mallory"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	p := handlers.Participant{Engine: newTestEngine(pdb, mdb)}

	req := httptest.NewRequest("POST", "/status", nil)
	req.Header.Set("User", "mallory")
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.StatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body models.ErrorMessageResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Response, "not found")
}

func TestParticipant_StatusHandlerHonorsConfiguredTimeout(t *testing.T) {
	pdb := &mocks.ParticipantDatabase{}
	mdb := &mocks.MessageDatabase{}

	pdb.On("UpdateOne", mock.Anything, bson.M{"name": "alice"}, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(250*time.Millisecond), deadline, 100*time.Millisecond)
		}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	p := handlers.Participant{Engine: newTestEngine(pdb, mdb), Timeout: 250 * time.Millisecond}

	req := httptest.NewRequest("POST", "/status", nil)
	req.Header.Set("User", "alice")
	rr := httptest.NewRecorder()
	http.HandlerFunc(p.StatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
