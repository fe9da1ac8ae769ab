package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/middleware"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/AdamBeresnev/tourny-app/internal/testutil"
	users "github.com/AdamBeresnev/tourny-app/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	tournaments *TournamentService
	matches     *MatchService
}

func newTestEnv(t *testing.T, size bracket.SizePolicy, revision bracket.RevisionPolicy) *testEnv {
	t.Helper()
	database := testutil.SetupTestDB(t)
	tournamentStore := store.NewTournamentStore(database)
	return &testEnv{
		db:          database,
		store:       tournamentStore,
		tournaments: NewTournamentService(database, tournamentStore, size),
		matches:     NewMatchService(database, tournamentStore, revision),
	}
}

func guestContext() context.Context {
	return middleware.WithUserID(context.Background(), users.GuestID)
}

func (e *testEnv) create(t *testing.T, ctx context.Context, name string, participants ...string) *bracket.Tournament {
	t.Helper()
	tournament, err := e.tournaments.CreateTournament(ctx, TournamentInput{
		Name:         name,
		Date:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Participants: participants,
	})
	require.NoError(t, err)
	return tournament
}

func (e *testEnv) match(t *testing.T, tournamentID uuid.UUID, round, position int) bracket.Match {
	t.Helper()
	matches, err := e.store.GetMatches(context.Background(), tournamentID)
	require.NoError(t, err)
	for _, m := range matches {
		if m.RoundNumber == round && m.Position == position {
			return m
		}
	}
	t.Fatalf("no match at round %d position %d", round, position)
	return bracket.Match{}
}

func (e *testEnv) participantID(t *testing.T, tournamentID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	participants, err := e.store.GetParticipants(context.Background(), tournamentID)
	require.NoError(t, err)
	for _, p := range participants {
		if p.Name == name {
			return p.ID
		}
	}
	t.Fatalf("no participant named %q", name)
	return uuid.Nil
}

func (e *testEnv) decide(t *testing.T, ctx context.Context, tournamentID uuid.UUID, round, position int, winner string) *RecordedResult {
	t.Helper()
	m := e.match(t, tournamentID, round, position)
	res, err := e.matches.RecordResult(ctx, m.ID, e.participantID(t, tournamentID, winner))
	require.NoError(t, err)
	return res
}
