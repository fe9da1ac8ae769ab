package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"invalid input", fmt.Errorf("%w: no participants", bracket.ErrInvalidInput), http.StatusBadRequest, "no participants"},
		{"invalid winner", fmt.Errorf("%w: not in match", bracket.ErrInvalidWinner), http.StatusBadRequest, "not in match"},
		{"not found", fmt.Errorf("match 1: %w", bracket.ErrNotFound), http.StatusNotFound, "failed to load match: not found"},
		{"locked", fmt.Errorf("%w: round 1 match 1", bracket.ErrResultLocked), http.StatusConflict, "already decided"},
		{"completed", fmt.Errorf("tournament x: %w", bracket.ErrTournamentCompleted), http.StatusConflict, "already completed"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, "failed to load match", tc.err)

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.expectedBody)
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}
