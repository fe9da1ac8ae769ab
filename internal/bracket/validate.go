package bracket

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type slotKey struct {
	round    int
	position int
}

// ValidateMatches checks the structural invariants of a match set loaded from storage.
func ValidateMatches(matches []Match) error {
	keys := make(map[slotKey]struct{}, len(matches))
	ids := make(map[uuid.UUID]struct{}, len(matches))

	for i, m := range matches {
		if m.RoundNumber < 1 || m.Position < 1 {
			return fmt.Errorf("%w: match %s has round %d position %d", ErrInvalidInput, m.ID, m.RoundNumber, m.Position)
		}
		if i > 0 && m.TournamentID != matches[0].TournamentID {
			return fmt.Errorf("%w: match %s belongs to another tournament", ErrInvalidInput, m.ID)
		}

		key := slotKey{m.RoundNumber, m.Position}
		if _, dup := keys[key]; dup {
			return fmt.Errorf("%w: more than one match at round %d position %d", ErrInvalidInput, m.RoundNumber, m.Position)
		}
		keys[key] = struct{}{}

		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("%w: match %s listed twice", ErrInvalidInput, m.ID)
		}
		ids[m.ID] = struct{}{}
	}
	return nil
}

func MaxRound(matches []Match) int {
	maxRound := 0
	for _, m := range matches {
		if m.RoundNumber > maxRound {
			maxRound = m.RoundNumber
		}
	}
	return maxRound
}

// SortMatches orders matches by round and then by position, in place.
func SortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RoundNumber != matches[j].RoundNumber {
			return matches[i].RoundNumber < matches[j].RoundNumber
		}
		return matches[i].Position < matches[j].Position
	})
}

// NextOpenMatch returns the earliest match that has both participants and no winner.
func NextOpenMatch(matches []Match) *Match {
	var open *Match
	for i := range matches {
		m := &matches[i]
		if !m.IsReady() || m.IsDecided() {
			continue
		}
		if open == nil || m.RoundNumber < open.RoundNumber ||
			(m.RoundNumber == open.RoundNumber && m.Position < open.Position) {
			open = m
		}
	}
	if open == nil {
		return nil
	}
	found := *open
	return &found
}

// Final returns the single match of the highest round, or nil for an empty bracket.
func Final(matches []Match) *Match {
	maxRound := MaxRound(matches)
	for i := range matches {
		if matches[i].RoundNumber == maxRound && matches[i].Position == 1 {
			final := matches[i]
			return &final
		}
	}
	return nil
}
