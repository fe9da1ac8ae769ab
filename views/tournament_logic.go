package views

import (
	"fmt"
	"sort"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/google/uuid"
)

type BracketData struct {
	Rounds         map[int][]bracket.Match
	RoundNums      []int
	ParticipantMap map[uuid.UUID]bracket.Participant
}

func PrepareBracketData(participants []bracket.Participant, matches []bracket.Match) BracketData {
	participantMap := make(map[uuid.UUID]bracket.Participant)
	for _, p := range participants {
		participantMap[p.ID] = p
	}

	rounds := make(map[int][]bracket.Match)
	var roundNums []int

	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].Position < rounds[r][j].Position
		})
	}

	return BracketData{
		Rounds:         rounds,
		RoundNums:      roundNums,
		ParticipantMap: participantMap,
	}
}

func (b BracketData) Name(id *uuid.UUID) string {
	if id == nil {
		return "TBD"
	}
	if p, ok := b.ParticipantMap[*id]; ok {
		return p.Name
	}
	return "TBD"
}

// RoundLabel names a round by its distance from the last round.
func RoundLabel(round, maxRound int) string {
	switch maxRound - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
