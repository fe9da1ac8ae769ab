package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/db"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db             *sqlx.DB
	store          *store.TournamentStore
	revisionPolicy bracket.RevisionPolicy
	locks          *tournamentLocks
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, revisionPolicy bracket.RevisionPolicy) *MatchService {
	return &MatchService{
		db:             db,
		store:          store,
		revisionPolicy: revisionPolicy,
		locks:          newTournamentLocks(),
	}
}

type MatchData struct {
	Tournament   *bracket.Tournament
	Match        *bracket.Match
	ParticipantA *bracket.Participant
	ParticipantB *bracket.Participant
	Winner       *bracket.Participant
	NextMatchID  *uuid.UUID
	// Editable is false once the match can no longer take a different winner.
	Editable bool
}

type RecordedResult struct {
	TournamentID uuid.UUID
	Status       bracket.TournamentStatus
	*bracket.Result
}

func (s *MatchService) GetMatchViewData(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.store.GetTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	data := &MatchData{Tournament: tournament, Match: match}

	if match.ParticipantAID != nil {
		if data.ParticipantA, err = s.store.GetParticipant(ctx, *match.ParticipantAID); err != nil {
			return nil, fmt.Errorf("failed to get participant A: %w", err)
		}
	}
	if match.ParticipantBID != nil {
		if data.ParticipantB, err = s.store.GetParticipant(ctx, *match.ParticipantBID); err != nil {
			return nil, fmt.Errorf("failed to get participant B: %w", err)
		}
	}
	switch {
	case match.IsWinner(match.ParticipantAID):
		data.Winner = data.ParticipantA
	case match.IsWinner(match.ParticipantBID):
		data.Winner = data.ParticipantB
	}

	matches, err := s.store.GetMatches(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if next := bracket.NextOpenMatch(matches); next != nil {
		data.NextMatchID = &next.ID
	}

	data.Editable = match.IsReady() &&
		tournament.Status != bracket.TournamentCompleted &&
		(!match.IsDecided() || s.revisionPolicy != bracket.RevisionForbid)

	return data, nil
}

// RecordResult decides a match and persists every match the decision touched.
// Results for one tournament are applied one at a time, both within this process
// through the tournament lock and across processes through the IMMEDIATE transaction.
func (s *MatchService) RecordResult(ctx context.Context, matchID, winnerID uuid.UUID) (*RecordedResult, error) {
	tournamentID, err := s.store.GetMatchTournamentID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(tournamentID)
	defer unlock()

	var recorded *RecordedResult
	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if err := authorize(ctx, tournament); err != nil {
			return err
		}

		matches, err := s.store.GetMatchesTx(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		res, err := bracket.RecordResult(matches, matchID, winnerID, s.revisionPolicy)
		if err != nil {
			return err
		}

		if tournament.Status == bracket.TournamentCompleted && res.Changed {
			return fmt.Errorf("tournament %s: %w", tournamentID, bracket.ErrTournamentCompleted)
		}

		if err := s.store.UpdateMatches(ctx, tx, res.Updated); err != nil {
			return err
		}

		status := tournament.Status
		if res.Changed {
			status = bracket.NextStatus(tournament.Status, res)
		}
		if status != tournament.Status {
			if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, status); err != nil {
				return fmt.Errorf("failed to update tournament status: %w", err)
			}
		}

		recorded = &RecordedResult{TournamentID: tournamentID, Status: status, Result: res}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if recorded.Changed {
		slog.Info("match result recorded",
			"tournament_id", tournamentID,
			"match_id", matchID,
			"winner_id", winnerID,
			"round", recorded.Round,
			"invalidated", len(recorded.Invalidated),
			"status", recorded.Status,
		)
	}

	return recorded, nil
}
