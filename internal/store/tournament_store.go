package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// TournamentSummary is a tournament row with its participant count, as listed on the dashboard.
type TournamentSummary struct {
	bracket.Tournament
	ParticipantCount int `db:"participant_count"`
}

type ArchivedTournament struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Slug         string    `db:"slug"`
	Date         time.Time `db:"date"`
	Participants int       `db:"participants"`
	Winner       *string   `db:"winner"`
	RunnerUp     *string   `db:"runner_up"`
}

type LeaderboardEntry struct {
	Rank              int    `db:"-"`
	Name              string `db:"name"`
	Wins              int    `db:"wins"`
	Losses            int    `db:"losses"`
	TournamentsPlayed int    `db:"tournaments_played"`
	TournamentsWon    int    `db:"tournaments_won"`
}

const (
	createTournamentQuery = `INSERT INTO tournaments (id, owner_id, name, slug, date, status)
		VALUES (:id, :owner_id, :name, :slug, :date, :status)`
	createParticipantsQuery = `INSERT INTO participants (id, tournament_id, name, seed)
		VALUES (:id, :tournament_id, :name, :seed)`
	createMatchesQuery = `INSERT INTO matches (id, tournament_id, round_number, position, participant_a_id, participant_b_id, winner_id)
		VALUES (:id, :tournament_id, :round_number, :position, :participant_a_id, :participant_b_id, :winner_id)`
	updateMatchQuery = `UPDATE matches SET
		participant_a_id = :participant_a_id,
		participant_b_id = :participant_b_id,
		winner_id = :winner_id,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = :id AND tournament_id = :tournament_id`

	getTournamentsByOwnerQuery = `
		SELECT t.*, (SELECT COUNT(*) FROM participants p WHERE p.tournament_id = t.id) AS participant_count
		FROM tournaments t
		WHERE t.owner_id = ?
		ORDER BY t.date DESC, t.created_at DESC`

	getArchiveQuery = `
		SELECT t.id, t.name, t.slug, t.date,
			(SELECT COUNT(*) FROM participants p WHERE p.tournament_id = t.id) AS participants,
			(SELECT p.name FROM matches m
				JOIN participants p ON p.id = m.winner_id
				WHERE m.tournament_id = t.id
				AND m.round_number = (SELECT MAX(round_number) FROM matches WHERE tournament_id = t.id)
				LIMIT 1) AS winner,
			(SELECT p.name FROM matches m
				JOIN participants p ON (p.id = m.participant_a_id OR p.id = m.participant_b_id) AND p.id != m.winner_id
				WHERE m.tournament_id = t.id
				AND m.winner_id IS NOT NULL
				AND m.round_number = (SELECT MAX(round_number) FROM matches WHERE tournament_id = t.id)
				LIMIT 1) AS runner_up
		FROM tournaments t
		WHERE t.status = 'completed' AND t.owner_id = ?
		ORDER BY t.date DESC`

	// Participants are grouped by name so the same player is counted across tournaments
	getLeaderboardQuery = `
		SELECT p.name AS name,
			COUNT(DISTINCT p.tournament_id) AS tournaments_played,
			COALESCE(SUM(CASE WHEN m.winner_id = p.id THEN 1 ELSE 0 END), 0) AS wins,
			COALESCE(SUM(CASE WHEN m.winner_id IS NOT NULL AND m.winner_id != p.id THEN 1 ELSE 0 END), 0) AS losses,
			COALESCE(SUM(CASE WHEN m.winner_id = p.id
				AND m.round_number = (SELECT MAX(round_number) FROM matches WHERE tournament_id = p.tournament_id)
				THEN 1 ELSE 0 END), 0) AS tournaments_won
		FROM participants p
		JOIN tournaments t ON t.id = p.tournament_id
		LEFT JOIN matches m ON (m.participant_a_id = p.id OR m.participant_b_id = p.id) AND m.tournament_id = p.tournament_id
		WHERE t.owner_id = ?
		GROUP BY p.name
		ORDER BY wins DESC, tournaments_won DESC, p.name ASC
		LIMIT ?`
)

func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, bracket.ErrNotFound)
	}
	return err
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) CreateParticipants(ctx context.Context, tx *sqlx.Tx, participants []bracket.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createParticipantsQuery, participants)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createMatchesQuery, matches)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, notFound(err, "tournament", id)
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentBySlug(ctx context.Context, slug string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE slug = ?", slug); err != nil {
		return nil, notFound(err, "tournament", slug)
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]TournamentSummary, error) {
	var tournaments []TournamentSummary
	err := s.db.SelectContext(ctx, &tournaments, getTournamentsByOwnerQuery, ownerID)
	return tournaments, err
}

// GetOpenTournaments returns every tournament that has not completed yet, across all owners.
func (s *TournamentStore) GetOpenTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE status != ? ORDER BY created_at ASC", bracket.TournamentCompleted)
	return tournaments, err
}

func (s *TournamentStore) GetParticipants(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := s.db.SelectContext(ctx, &participants, "SELECT * FROM participants WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return participants, err
}

func (s *TournamentStore) GetParticipant(ctx context.Context, id uuid.UUID) (*bracket.Participant, error) {
	var participant bracket.Participant
	if err := s.db.GetContext(ctx, &participant, "SELECT * FROM participants WHERE id = ?", id); err != nil {
		return nil, notFound(err, "participant", id)
	}
	return &participant, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, tx, tournamentID)
}

func getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, position ASC", tournamentID)
	if err != nil {
		return nil, err
	}
	if err := bracket.ValidateMatches(matches); err != nil {
		return nil, fmt.Errorf("tournament %s has a corrupt bracket: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, notFound(err, "match", id)
	}
	return &match, nil
}

func (s *TournamentStore) GetMatchTournamentID(ctx context.Context, matchID uuid.UUID) (uuid.UUID, error) {
	var tournamentID uuid.UUID
	if err := s.db.GetContext(ctx, &tournamentID, "SELECT tournament_id FROM matches WHERE id = ?", matchID); err != nil {
		return uuid.Nil, notFound(err, "match", matchID)
	}
	return tournamentID, nil
}

func (s *TournamentStore) UpdateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for _, m := range matches {
		res, err := tx.NamedExecContext(ctx, updateMatchQuery, m)
		if err != nil {
			return fmt.Errorf("failed to update match %s: %w", m.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("match %s: %w", m.ID, bracket.ErrNotFound)
		}
	}
	return nil
}

// AdvanceTournamentStatus sets the status only while the stored status still equals from.
// It reports false when another writer changed the status first.
func (s *TournamentStore) AdvanceTournamentStatus(ctx context.Context, id uuid.UUID, from, to bracket.TournamentStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ? AND status = ?", to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) GetArchive(ctx context.Context, ownerID uuid.UUID) ([]ArchivedTournament, error) {
	var archive []ArchivedTournament
	err := s.db.SelectContext(ctx, &archive, getArchiveQuery, ownerID)
	return archive, err
}

func (s *TournamentStore) GetLeaderboard(ctx context.Context, ownerID uuid.UUID, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	if err := s.db.SelectContext(ctx, &entries, getLeaderboardQuery, ownerID, limit); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
