package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/openroom/roomchat-api/config"
	"github.com/openroom/roomchat-api/room"
)

// engineError maps an engine error to its HTTP status. Store failures are
// logged in full and answered with a generic 500 body.
func engineError(w http.ResponseWriter, err error) {
	var verr *room.ValidationError
	switch {
	case errors.As(err, &verr):
		config.ErrorStatus("failed to validate request", http.StatusUnprocessableEntity, w, verr)
	case errors.Is(err, room.ErrNotPresent):
		config.ErrorStatus("sender is not in the room", http.StatusUnprocessableEntity, w, err)
	case errors.Is(err, room.ErrConflict):
		config.ErrorStatus("name is already taken", http.StatusConflict, w, err)
	case errors.Is(err, room.ErrNotFound):
		config.ErrorStatus("not found", http.StatusNotFound, w, err)
	case errors.Is(err, room.ErrUnauthorized):
		config.ErrorStatus("only the sender may modify this message", http.StatusUnauthorized, w, err)
	default:
		zap.S().Errorw("unexpected engine failure", "error", err)
		config.ErrorStatus("something went wrong", http.StatusInternalServerError, w, room.ErrInternal)
	}
}
