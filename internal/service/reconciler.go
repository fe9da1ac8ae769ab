package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// StatusReconciler moves stored tournament statuses forward when they lag behind
// what the recorded matches imply. Statuses never move backwards.
type StatusReconciler struct {
	store     *store.TournamentStore
	scheduler gocron.Scheduler
}

func NewStatusReconciler(store *store.TournamentStore) *StatusReconciler {
	return &StatusReconciler{store: store}
}

// Run reconciles every open tournament once and returns how many were updated.
func (r *StatusReconciler) Run(ctx context.Context) (int, error) {
	tournaments, err := r.store.GetOpenTournaments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open tournaments: %w", err)
	}

	updated := 0
	for _, t := range tournaments {
		matches, err := r.store.GetMatches(ctx, t.ID)
		if err != nil {
			slog.Error("skipping tournament during reconcile", "tournament_id", t.ID, "error", err)
			continue
		}

		changed, err := r.reconcile(ctx, t, matches)
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}

	return updated, nil
}

// reconcile writes the status implied by matches, but only over the status that was read
// with t. A result recorded in between wins and the tournament is left for the next pass.
func (r *StatusReconciler) reconcile(ctx context.Context, t bracket.Tournament, matches []bracket.Match) (bool, error) {
	status := t.Status.Advance(bracket.DeriveStatus(matches))
	if status == t.Status {
		return false, nil
	}

	ok, err := r.store.AdvanceTournamentStatus(ctx, t.ID, t.Status, status)
	if err != nil {
		return false, fmt.Errorf("failed to update tournament %s: %w", t.ID, err)
	}
	if !ok {
		slog.Debug("tournament status changed during reconcile", "tournament_id", t.ID, "read", t.Status)
		return false, nil
	}
	slog.Info("tournament status reconciled", "tournament_id", t.ID, "from", t.Status, "to", status)
	return true, nil
}

func (r *StatusReconciler) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := r.Run(ctx); err != nil {
				slog.Error("status reconcile failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	sched.Start()
	r.scheduler = sched
	return nil
}

func (r *StatusReconciler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}
