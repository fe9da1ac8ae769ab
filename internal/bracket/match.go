package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`

	// 1-indexed, round 1 is the first round and position 1 the leftmost match
	RoundNumber int `db:"round_number"`
	Position    int `db:"position"`

	ParticipantAID *uuid.UUID `db:"participant_a_id"`
	ParticipantBID *uuid.UUID `db:"participant_b_id"`
	WinnerID       *uuid.UUID `db:"winner_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsPlaceholder reports whether the match is still waiting on both of its feeders.
func (m *Match) IsPlaceholder() bool {
	return m.ParticipantAID == nil && m.ParticipantBID == nil
}

// IsReady reports whether both slots are filled, which is required before a winner can be recorded.
func (m *Match) IsReady() bool {
	return m.ParticipantAID != nil && m.ParticipantBID != nil
}

func (m *Match) IsDecided() bool {
	return m.WinnerID != nil
}

func (m *Match) HasParticipant(id uuid.UUID) bool {
	return (m.ParticipantAID != nil && *m.ParticipantAID == id) ||
		(m.ParticipantBID != nil && *m.ParticipantBID == id)
}

// LoserID returns the participant that did not win, or nil while undecided.
func (m *Match) LoserID() *uuid.UUID {
	if m.WinnerID == nil || !m.IsReady() {
		return nil
	}
	if *m.ParticipantAID == *m.WinnerID {
		return m.ParticipantBID
	}
	return m.ParticipantAID
}

func (m *Match) IsWinner(id *uuid.UUID) bool {
	return id != nil && m.WinnerID != nil && *m.WinnerID == *id
}

func (m *Match) IsLoser(id *uuid.UUID) bool {
	return id != nil && m.WinnerID != nil && *m.WinnerID != *id
}

// NextSlot returns where the winner of a match at (round, position) is placed.
// Odd positions feed slot A of the next match, even positions feed slot B.
func NextSlot(round, position int) (nextRound, nextPosition int, slotA bool) {
	return round + 1, (position + 1) / 2, position%2 == 1
}
