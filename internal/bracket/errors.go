package bracket

import "errors"

var (
	// ErrInvalidInput is returned for participant lists or match sets a bracket cannot be built from.
	ErrInvalidInput = errors.New("invalid bracket input")
	ErrNotFound     = errors.New("not found")
	// ErrInvalidWinner covers winners outside the match and matches that are not ready to be decided.
	ErrInvalidWinner = errors.New("invalid winner")
	// ErrResultLocked is returned when a decided match is given a different winner under RevisionForbid.
	ErrResultLocked = errors.New("match result is already decided")
	// ErrTournamentCompleted is returned when a result would change a completed tournament.
	ErrTournamentCompleted = errors.New("tournament is already completed")
)
