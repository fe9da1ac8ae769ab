package bracket

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Gets the number of rounds while rounding up, so with 5 participants it returns 3
func RoundCount(count int) int {
	if count <= 1 {
		return 0
	}

	// Log2 is exact for powers of two so ceil does not overshoot
	return int(math.Ceil(math.Log2(float64(count))))
}

// MatchesInRound is floor(count / 2^round).
func MatchesInRound(count, round int) int {
	if round < 1 || count < 2 {
		return 0
	}
	return count >> round
}

// Generate lays out every match of a single elimination bracket.
// Round 1 pairs participants in the given order, later rounds are placeholders
// that RecordResult fills as winners advance.
func Generate(tournamentID uuid.UUID, participants []Participant, policy SizePolicy) ([]Match, error) {
	n := len(participants)
	if n < 1 {
		return nil, fmt.Errorf("%w: at least one participant is required", ErrInvalidInput)
	}
	if policy == SizePowerOfTwo && n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d participants is not a power of two", ErrInvalidInput, n)
	}

	seen := make(map[uuid.UUID]struct{}, n)
	for _, p := range participants {
		if p.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: participant %q has no id", ErrInvalidInput, p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: participant %s listed twice", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	totalRounds := RoundCount(n)
	matches := make([]Match, 0, n)

	for i := 0; i < n/2; i++ {
		a := participants[2*i].ID
		b := participants[2*i+1].ID
		matches = append(matches, Match{
			ID:             uuid.New(),
			TournamentID:   tournamentID,
			RoundNumber:    1,
			Position:       i + 1,
			ParticipantAID: &a,
			ParticipantBID: &b,
		})
	}

	for r := 2; r <= totalRounds; r++ {
		for i := 0; i < MatchesInRound(n, r); i++ {
			matches = append(matches, Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				RoundNumber:  r,
				Position:     i + 1,
			})
		}
	}

	return matches, nil
}

// Unplaced returns the participants that no round 1 match contains.
func Unplaced(participants []Participant, matches []Match) []Participant {
	placed := make(map[uuid.UUID]struct{})
	for _, m := range matches {
		if m.RoundNumber != 1 {
			continue
		}
		if m.ParticipantAID != nil {
			placed[*m.ParticipantAID] = struct{}{}
		}
		if m.ParticipantBID != nil {
			placed[*m.ParticipantBID] = struct{}{}
		}
	}

	var unplaced []Participant
	for _, p := range participants {
		if _, ok := placed[p.ID]; !ok {
			unplaced = append(unplaced, p)
		}
	}
	return unplaced
}
