package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWinnerOnly stores a result without touching the tournament status, as a manual repair would.
func (e *testEnv) writeWinnerOnly(t *testing.T, tournament bracket.Tournament, round, position int, slotA bool) {
	t.Helper()
	ctx := context.Background()

	matches, err := e.store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	m := e.match(t, tournament.ID, round, position)
	winner := *m.ParticipantBID
	if slotA {
		winner = *m.ParticipantAID
	}

	res, err := bracket.RecordResult(matches, m.ID, winner, bracket.RevisionForbid)
	require.NoError(t, err)

	tx, err := e.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, e.store.UpdateMatches(ctx, tx, res.Updated))
	require.NoError(t, tx.Commit())
}

func TestStatusReconciler_Run(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	ctx := guestContext()
	reconciler := NewStatusReconciler(env.store)

	lagging := env.create(t, ctx, "Lagging", names(4)...)
	finished := env.create(t, ctx, "Finished", names(2)...)
	untouched := env.create(t, ctx, "Untouched", names(4)...)

	env.writeWinnerOnly(t, *lagging, 1, 1, true)
	env.writeWinnerOnly(t, *finished, 1, 1, false)

	updated, err := reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	status := func(id bracket.Tournament) bracket.TournamentStatus {
		stored, err := env.store.GetTournament(ctx, id.ID)
		require.NoError(t, err)
		return stored.Status
	}
	assert.Equal(t, bracket.TournamentInProgress, status(*lagging))
	assert.Equal(t, bracket.TournamentCompleted, status(*finished))
	assert.Equal(t, bracket.TournamentUpcoming, status(*untouched))

	updated, err = reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, updated, "a second pass has nothing to do")
}

func TestStatusReconciler_NeverRegresses(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	ctx := guestContext()
	tournament := env.create(t, ctx, "Started Early", names(4)...)

	err := withTx(t, env, func(tx *sqlx.Tx) error {
		return env.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.TournamentInProgress)
	})
	require.NoError(t, err)

	updated, err := NewStatusReconciler(env.store).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, updated)

	stored, err := env.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentInProgress, stored.Status)
}

func TestStatusReconciler_StaleRead(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	ctx := guestContext()
	reconciler := NewStatusReconciler(env.store)
	tournament := env.create(t, ctx, "Raced", names(4)...)

	env.writeWinnerOnly(t, *tournament, 1, 1, true)
	stale, err := env.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	staleMatches, err := env.store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Equal(t, bracket.TournamentUpcoming, stale.Status)

	// The rest of the bracket is played while the pass is between its read and its write.
	for _, pos := range [][2]int{{1, 2}, {2, 1}} {
		m := env.match(t, tournament.ID, pos[0], pos[1])
		_, err := env.matches.RecordResult(ctx, m.ID, *m.ParticipantAID)
		require.NoError(t, err)
	}

	changed, err := reconciler.reconcile(ctx, *stale, staleMatches)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := env.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, stored.Status, "a stale pass must not move the status back")
}

func TestStatusReconciler_StartStop(t *testing.T) {
	env := newTestEnv(t, bracket.SizePowerOfTwo, bracket.RevisionForbid)
	reconciler := NewStatusReconciler(env.store)

	require.NoError(t, reconciler.Start(time.Hour))
	assert.NoError(t, reconciler.Stop())
	assert.NoError(t, NewStatusReconciler(env.store).Stop(), "stopping an idle reconciler is a no-op")
}

func withTx(t *testing.T, env *testEnv, fn func(tx *sqlx.Tx) error) error {
	t.Helper()
	tx, err := env.db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
