package bracket

import (
	"fmt"

	"github.com/AdamBeresnev/tourny-app/internal/utils"
	"github.com/google/uuid"
)

// Result is the outcome of recording a winner. Matches is a full copy of the
// bracket after the change, Updated holds only the matches that differ from the input.
type Result struct {
	Matches     []Match
	Match       Match
	Next        *Match
	Invalidated []Match
	Updated     []Match

	Round     int
	MaxRound  int
	Completed bool
	Changed   bool
}

// RecordResult sets the winner of a match and advances them into the next round.
// The input slice is never modified, on error nothing has been applied.
func RecordResult(matches []Match, matchID, winnerID uuid.UUID, policy RevisionPolicy) (*Result, error) {
	if err := ValidateMatches(matches); err != nil {
		return nil, err
	}

	idx := -1
	positions := make(map[slotKey]int, len(matches))
	for i, m := range matches {
		positions[slotKey{m.RoundNumber, m.Position}] = i
		if m.ID == matchID {
			idx = i
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	target := matches[idx]
	if !target.IsReady() {
		return nil, fmt.Errorf("%w: round %d match %d is still waiting on earlier rounds", ErrInvalidWinner, target.RoundNumber, target.Position)
	}
	if !target.HasParticipant(winnerID) {
		return nil, fmt.Errorf("%w: %s is not part of this match", ErrInvalidWinner, winnerID)
	}

	revised := target.WinnerID != nil && *target.WinnerID != winnerID
	if revised && policy == RevisionForbid {
		return nil, fmt.Errorf("%w: round %d match %d", ErrResultLocked, target.RoundNumber, target.Position)
	}

	updated := make([]Match, len(matches))
	copy(updated, matches)

	var order []int
	touched := make(map[int]bool)
	mark := func(i int) {
		if !touched[i] {
			touched[i] = true
			order = append(order, i)
		}
	}

	if target.WinnerID == nil || revised {
		updated[idx].WinnerID = utils.Ptr(winnerID)
		mark(idx)
	}

	res := &Result{
		Round:     target.RoundNumber,
		MaxRound:  MaxRound(matches),
		Completed: target.RoundNumber == MaxRound(matches),
	}

	var cleared []int
	nextRound, nextPosition, slotA := NextSlot(target.RoundNumber, target.Position)
	if ni, ok := positions[slotKey{nextRound, nextPosition}]; ok {
		next := &updated[ni]
		slot := &next.ParticipantBID
		if slotA {
			slot = &next.ParticipantAID
		}
		if *slot == nil || **slot != winnerID {
			*slot = utils.Ptr(winnerID)
			mark(ni)
		}

		if revised && policy == RevisionCascade {
			cleared = invalidateFrom(updated, positions, ni, mark)
		}
	}

	// Copies are taken once every change has been applied
	res.Match = updated[idx]
	if ni, ok := positions[slotKey{nextRound, nextPosition}]; ok {
		next := updated[ni]
		res.Next = &next
	}
	for _, i := range cleared {
		res.Invalidated = append(res.Invalidated, updated[i])
	}
	for _, i := range order {
		res.Updated = append(res.Updated, updated[i])
	}
	res.Matches = updated
	res.Changed = len(order) > 0

	return res, nil
}

// invalidateFrom clears the winner of match i and walks the advancement path,
// emptying the slot each cleared winner had filled, until it reaches an undecided match.
func invalidateFrom(matches []Match, positions map[slotKey]int, i int, mark func(int)) []int {
	var cleared []int
	for {
		m := &matches[i]
		if m.WinnerID == nil {
			return cleared
		}
		m.WinnerID = nil
		mark(i)
		cleared = append(cleared, i)

		nextRound, nextPosition, slotA := NextSlot(m.RoundNumber, m.Position)
		ni, ok := positions[slotKey{nextRound, nextPosition}]
		if !ok {
			return cleared
		}
		next := &matches[ni]
		if slotA && next.ParticipantAID != nil {
			next.ParticipantAID = nil
			mark(ni)
		} else if !slotA && next.ParticipantBID != nil {
			next.ParticipantBID = nil
			mark(ni)
		}
		i = ni
	}
}
