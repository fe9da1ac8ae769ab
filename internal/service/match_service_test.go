package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResult_Progression(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	ctx := guestContext()
	tournament := env.create(t, ctx, "Spring Cup", names(4)...)

	res := env.decide(t, ctx, tournament.ID, 1, 1, "A")
	assert.Equal(t, bracket.TournamentInProgress, res.Status)
	assert.False(t, res.Completed)
	require.NotNil(t, res.Next)
	assert.Equal(t, env.participantID(t, tournament.ID, "A"), *res.Next.ParticipantAID)

	final := env.match(t, tournament.ID, 2, 1)
	assert.Equal(t, env.participantID(t, tournament.ID, "A"), *final.ParticipantAID)
	assert.Nil(t, final.ParticipantBID)

	env.decide(t, ctx, tournament.ID, 1, 2, "C")
	res = env.decide(t, ctx, tournament.ID, 2, 1, "C")
	assert.True(t, res.Completed)
	assert.Equal(t, bracket.TournamentCompleted, res.Status)

	stored, err := env.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, stored.Status)
}

func TestRecordResult_Errors(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	ctx := guestContext()
	tournament := env.create(t, ctx, "Spring Cup", names(4)...)

	first := env.match(t, tournament.ID, 1, 1)
	final := env.match(t, tournament.ID, 2, 1)

	_, err := env.matches.RecordResult(ctx, uuid.New(), env.participantID(t, tournament.ID, "A"))
	assert.ErrorIs(t, err, bracket.ErrNotFound, "unknown match")

	_, err = env.matches.RecordResult(ctx, first.ID, env.participantID(t, tournament.ID, "C"))
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner, "winner outside the match")

	_, err = env.matches.RecordResult(ctx, final.ID, env.participantID(t, tournament.ID, "A"))
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner, "match is not ready")

	stranger := middleware.WithUserID(context.Background(), uuid.New())
	_, err = env.matches.RecordResult(stranger, first.ID, env.participantID(t, tournament.ID, "A"))
	assert.ErrorIs(t, err, bracket.ErrNotFound, "other owners cannot see the match")

	unchanged := env.match(t, tournament.ID, 1, 1)
	assert.Nil(t, unchanged.WinnerID)
	stored, err := env.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentUpcoming, stored.Status)
}

func TestRecordResult_Revisions(t *testing.T) {
	t.Run("forbid keeps the first result", func(t *testing.T) {
		env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
		ctx := guestContext()
		tournament := env.create(t, ctx, "Spring Cup", names(4)...)

		env.decide(t, ctx, tournament.ID, 1, 1, "A")
		replay := env.decide(t, ctx, tournament.ID, 1, 1, "A")
		assert.False(t, replay.Changed)

		first := env.match(t, tournament.ID, 1, 1)
		_, err := env.matches.RecordResult(ctx, first.ID, env.participantID(t, tournament.ID, "B"))
		assert.ErrorIs(t, err, bracket.ErrResultLocked)
	})

	t.Run("cascade clears decided descendants", func(t *testing.T) {
		env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionCascade)
		ctx := guestContext()
		tournament := env.create(t, ctx, "Spring Cup", names(8)...)

		env.decide(t, ctx, tournament.ID, 1, 1, "A")
		env.decide(t, ctx, tournament.ID, 1, 2, "C")
		env.decide(t, ctx, tournament.ID, 2, 1, "A")

		res := env.decide(t, ctx, tournament.ID, 1, 1, "B")
		assert.True(t, res.Changed)
		assert.Len(t, res.Invalidated, 1)

		semi := env.match(t, tournament.ID, 2, 1)
		assert.Equal(t, env.participantID(t, tournament.ID, "B"), *semi.ParticipantAID)
		assert.Nil(t, semi.WinnerID)

		final := env.match(t, tournament.ID, 3, 1)
		assert.Nil(t, final.ParticipantAID)
	})

	t.Run("completed tournaments only accept replays", func(t *testing.T) {
		env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionOverwrite)
		ctx := guestContext()
		tournament := env.create(t, ctx, "Duel", "A", "B")

		env.decide(t, ctx, tournament.ID, 1, 1, "A")
		replay := env.decide(t, ctx, tournament.ID, 1, 1, "A")
		assert.False(t, replay.Changed)
		assert.Equal(t, bracket.TournamentCompleted, replay.Status)

		final := env.match(t, tournament.ID, 1, 1)
		_, err := env.matches.RecordResult(ctx, final.ID, env.participantID(t, tournament.ID, "B"))
		assert.ErrorIs(t, err, bracket.ErrTournamentCompleted)

		stored := env.match(t, tournament.ID, 1, 1)
		assert.Equal(t, env.participantID(t, tournament.ID, "A"), *stored.WinnerID)
	})
}

func TestRecordResult_Concurrent(t *testing.T) {
	t.Run("different matches all land", func(t *testing.T) {
		env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
		ctx := guestContext()
		tournament := env.create(t, ctx, "Summer Open", names(8)...)

		type submission struct{ matchID, winnerID uuid.UUID }
		var submissions []submission
		for position, winner := range []string{"A", "C", "E", "G"} {
			m := env.match(t, tournament.ID, 1, position+1)
			submissions = append(submissions, submission{m.ID, env.participantID(t, tournament.ID, winner)})
		}

		var wg sync.WaitGroup
		errs := make([]error, len(submissions))
		for i, s := range submissions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = env.matches.RecordResult(ctx, s.matchID, s.winnerID)
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		for position, pair := range [][2]string{{"A", "C"}, {"E", "G"}} {
			m := env.match(t, tournament.ID, 2, position+1)
			require.True(t, m.IsReady())
			assert.Equal(t, env.participantID(t, tournament.ID, pair[0]), *m.ParticipantAID)
			assert.Equal(t, env.participantID(t, tournament.ID, pair[1]), *m.ParticipantBID)
		}
	})

	t.Run("conflicting winners for one match", func(t *testing.T) {
		env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
		ctx := guestContext()
		tournament := env.create(t, ctx, "Duel", "A", "B")
		m := env.match(t, tournament.ID, 1, 1)

		var succeeded, locked atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			winner := *m.ParticipantAID
			if i%2 == 1 {
				winner = *m.ParticipantBID
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := env.matches.RecordResult(ctx, m.ID, winner)
				switch {
				case err == nil && res.Changed:
					succeeded.Add(1)
				case errors.Is(err, bracket.ErrResultLocked):
					locked.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load(), "exactly one result is applied")
		assert.Equal(t, int32(5), locked.Load(), "the other winner is rejected every time")
	})
}

func TestGetMatchViewData(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	ctx := guestContext()
	tournament := env.create(t, ctx, "Spring Cup", names(4)...)

	first := env.match(t, tournament.ID, 1, 1)
	data, err := env.matches.GetMatchViewData(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", data.ParticipantA.Name)
	assert.Equal(t, "B", data.ParticipantB.Name)
	assert.Nil(t, data.Winner)
	assert.True(t, data.Editable)
	require.NotNil(t, data.NextMatchID)
	assert.Equal(t, first.ID, *data.NextMatchID)

	env.decide(t, ctx, tournament.ID, 1, 1, "B")
	data, err = env.matches.GetMatchViewData(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, data.Winner)
	assert.Equal(t, "B", data.Winner.Name)
	assert.False(t, data.Editable, "decided matches are locked under forbid")
	assert.Equal(t, env.match(t, tournament.ID, 1, 2).ID, *data.NextMatchID)

	final := env.match(t, tournament.ID, 2, 1)
	data, err = env.matches.GetMatchViewData(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", data.ParticipantA.Name)
	assert.Nil(t, data.ParticipantB)
	assert.False(t, data.Editable)

	_, err = env.matches.GetMatchViewData(middleware.WithUserID(context.Background(), uuid.New()), first.ID)
	assert.ErrorIs(t, err, bracket.ErrNotFound)
}
