package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/service"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testBracket(t *testing.T, names ...string) ([]bracket.Participant, []bracket.Match) {
	t.Helper()
	tournamentID := uuid.New()
	participants := make([]bracket.Participant, len(names))
	for i, name := range names {
		participants[i] = bracket.Participant{ID: uuid.New(), TournamentID: tournamentID, Name: name, Seed: i + 1}
	}
	matches, err := bracket.Generate(tournamentID, participants, bracket.SizeFloor)
	require.NoError(t, err)
	// Reverse so grouping has to sort
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return participants, matches
}

func TestPrepareBracketData(t *testing.T) {
	participants, matches := testBracket(t, "A", "B", "C", "D", "E", "F", "G", "H")

	data := PrepareBracketData(participants, matches)
	assert.Equal(t, []int{1, 2, 3}, data.RoundNums)
	require.Len(t, data.Rounds[1], 4)
	for i, m := range data.Rounds[1] {
		assert.Equal(t, i+1, m.Position)
	}
	assert.Len(t, data.Rounds[3], 1)
	assert.Equal(t, "A", data.Name(data.Rounds[1][0].ParticipantAID))
	assert.Equal(t, "TBD", data.Name(data.Rounds[3][0].ParticipantAID))
}

func TestRoundLabel(t *testing.T) {
	assert.Equal(t, "Final", RoundLabel(4, 4))
	assert.Equal(t, "Semifinals", RoundLabel(3, 4))
	assert.Equal(t, "Quarterfinals", RoundLabel(2, 4))
	assert.Equal(t, "Round 1", RoundLabel(1, 4))
}

func TestTournamentView(t *testing.T) {
	participants, matches := testBracket(t, "<script>alert(1)</script>", "Bob", "Carol", "Dave", "Eve")
	tournament := &bracket.Tournament{
		ID:     uuid.New(),
		Name:   "Spring & Summer",
		Slug:   "spring-summer-1234abcd",
		Date:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status: bracket.TournamentUpcoming,
	}
	data := &service.TournamentData{
		Tournament:   tournament,
		Participants: participants,
		Matches:      matches,
		Unplaced:     participants[4:],
	}

	out := render(t, TournamentView(data))
	assert.Contains(t, out, "Spring &amp; Summer")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "2026-04-01")
	assert.Contains(t, out, "Semifinals")
	assert.Contains(t, out, "Without a first round match: Eve")
	assert.Contains(t, out, `href="/t/spring-summer-1234abcd"`)
}

func TestMatchView(t *testing.T) {
	participants, matches := testBracket(t, "Alice", "Bob")
	m := matches[0]
	data := &service.MatchData{
		Tournament:   &bracket.Tournament{ID: m.TournamentID, Name: "Duel"},
		Match:        &m,
		ParticipantA: &participants[0],
		ParticipantB: &participants[1],
		Editable:     true,
	}

	out := render(t, MatchView(data))
	assert.Contains(t, out, "Round 1, match 1")
	assert.Contains(t, out, `hx-post="/matches/`+m.ID.String()+`/result"`)
	assert.Contains(t, out, `value="`+participants[1].ID.String()+`"`)

	data.Editable = false
	out = render(t, MatchView(data))
	assert.NotContains(t, out, "hx-post")
}

func TestMatchResult(t *testing.T) {
	res := &service.RecordedResult{
		TournamentID: uuid.New(),
		Result:       &bracket.Result{Completed: true},
	}
	out := render(t, MatchResult(res, "Alice", nil))
	assert.Contains(t, out, "Alice is the champion.")
	assert.NotContains(t, out, "Next match")
}

func TestReports(t *testing.T) {
	winner := "Alice"
	out := render(t, ArchivePage([]store.ArchivedTournament{{Name: "Cup", Slug: "cup-1", Participants: 4, Winner: &winner}}))
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "<td>-</td>")

	out = render(t, LeaderboardPage(nil))
	assert.Contains(t, out, "No results recorded yet.")

	out = render(t, Index(nil, "<b>"))
	assert.Contains(t, out, "No tournaments match your search.")
	assert.Contains(t, out, `value="&lt;b&gt;"`)
}

func TestDecidedMatchMarkup(t *testing.T) {
	participants, matches := testBracket(t, "Alice", "Bob")
	m := matches[0]
	m.WinnerID = &participants[0].ID
	data := &service.MatchData{
		Tournament:   &bracket.Tournament{ID: m.TournamentID, Name: "Duel"},
		Match:        &m,
		ParticipantA: &participants[0],
		ParticipantB: &participants[1],
		Winner:       &participants[0],
	}

	out := render(t, MatchView(data))
	assert.Contains(t, out, `<div class="contender winner">`)
	assert.Contains(t, out, `<div class="contender">`)
	assert.Contains(t, out, "Winner: Alice")

	out = render(t, bracketRounds(PrepareBracketData(participants, []bracket.Match{m}), 1))
	assert.Contains(t, out, `<span class="slot winner">Alice</span>`)
	assert.Contains(t, out, `<span class="slot loser">Bob</span>`)
	assert.Contains(t, out, `href="/matches/`+m.ID.String()+`"`)
}
