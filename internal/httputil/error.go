package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	http.Error(w, msg, http.StatusConflict)
}

// StatusCode maps bracket error kinds to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, bracket.ErrInvalidInput), errors.Is(err, bracket.ErrInvalidWinner):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrResultLocked), errors.Is(err, bracket.ErrTournamentCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError responds with the status matching err. Client errors echo the error
// text, anything else is logged and hidden behind a generic message.
func WriteError(w http.ResponseWriter, msg string, err error) {
	switch StatusCode(err) {
	case http.StatusBadRequest:
		BadRequest(w, err.Error(), err)
	case http.StatusNotFound:
		NotFound(w, msg+": not found", err)
	case http.StatusConflict:
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
