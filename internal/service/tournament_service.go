package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/db"
	"github.com/AdamBeresnev/tourny-app/internal/middleware"
	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const LeaderboardSize = 10

type TournamentService struct {
	db         *sqlx.DB
	store      *store.TournamentStore
	sizePolicy bracket.SizePolicy
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, sizePolicy bracket.SizePolicy) *TournamentService {
	return &TournamentService{db: db, store: store, sizePolicy: sizePolicy}
}

type TournamentInput struct {
	Name         string
	Date         time.Time
	Participants []string
}

type TournamentData struct {
	Tournament   *bracket.Tournament
	Participants []bracket.Participant
	Matches      []bracket.Match
	NextMatch    *bracket.Match
	Champion     *bracket.Participant
	// Unplaced is only non-empty under the floor size policy with an odd participant count.
	Unplaced []bracket.Participant
}

func (d *TournamentData) Participant(id *uuid.UUID) *bracket.Participant {
	if id == nil {
		return nil
	}
	for i := range d.Participants {
		if d.Participants[i].ID == *id {
			return &d.Participants[i]
		}
	}
	return nil
}

func (d *TournamentData) ParticipantName(id *uuid.UUID) string {
	if p := d.Participant(id); p != nil {
		return p.Name
	}
	return "TBD"
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*bracket.Tournament, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", bracket.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxTournamentNameLength {
		return nil, fmt.Errorf("%w: tournament name is longer than %d characters", bracket.ErrInvalidInput, MaxTournamentNameLength)
	}
	if len(input.Participants) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", bracket.ErrInvalidInput)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	tournamentID := uuid.New()
	tournament := bracket.Tournament{
		ID:      tournamentID,
		OwnerID: ownerID,
		Name:    name,
		Slug:    makeSlug(name, tournamentID),
		Date:    calendarDate(date),
		Status:  bracket.TournamentUpcoming,
	}

	participants := make([]bracket.Participant, 0, len(input.Participants))
	for i, participantName := range input.Participants {
		participants = append(participants, bracket.Participant{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         participantName,
			Seed:         i + 1,
		})
	}

	matches, err := bracket.Generate(tournamentID, participants, s.sizePolicy)
	if err != nil {
		return nil, err
	}

	if unplaced := bracket.Unplaced(participants, matches); len(matches) > 0 && len(unplaced) > 0 {
		for _, p := range unplaced {
			slog.Warn("participant left out of the bracket", "tournament_id", tournamentID, "participant", p.Name, "seed", p.Seed)
		}
	}

	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		if err := s.store.CreateParticipants(ctx, tx, participants); err != nil {
			return fmt.Errorf("failed to create participants: %w", err)
		}
		if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
			return fmt.Errorf("failed to create matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("tournament created", "tournament_id", tournamentID, "participants", len(participants), "matches", len(matches))
	return &tournament, nil
}

func makeSlug(name string, id uuid.UUID) string {
	base := slug.Make(name)
	if base == "" {
		base = "tournament"
	}
	return base + "-" + id.String()[:8]
}

// authorize hides tournaments of other owners behind ErrNotFound.
func authorize(ctx context.Context, tournament *bracket.Tournament) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || tournament.OwnerID != userID {
		return fmt.Errorf("tournament %s: %w", tournament.ID, bracket.ErrNotFound)
	}
	return nil
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	participants, err := s.store.GetParticipants(ctx, id)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ctx, id)
	if err != nil {
		return nil, err
	}

	data := &TournamentData{
		Tournament:   tournament,
		Participants: participants,
		Matches:      matches,
		NextMatch:    bracket.NextOpenMatch(matches),
	}
	if len(matches) > 0 {
		data.Unplaced = bracket.Unplaced(participants, matches)
	}
	if final := bracket.Final(matches); final != nil && final.IsDecided() {
		data.Champion = data.Participant(final.WinnerID)
	}

	return data, nil
}

func (s *TournamentService) GetTournamentBySlug(ctx context.Context, slug string) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournamentBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

// GetTournamentsForUser lists the caller's tournaments, newest first. A non-empty
// query keeps only fuzzy name matches, best match first.
func (s *TournamentService) GetTournamentsForUser(ctx context.Context, query string) ([]store.TournamentSummary, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}

	tournaments, err := s.store.GetTournamentsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return tournaments, nil
	}

	names := make([]string, len(tournaments))
	for i, t := range tournaments {
		names[i] = t.Name
	}

	ranks := fuzzy.RankFindFold(query, names)
	sort.Stable(ranks)

	filtered := make([]store.TournamentSummary, 0, len(ranks))
	for _, r := range ranks {
		filtered = append(filtered, tournaments[r.OriginalIndex])
	}
	return filtered, nil
}

func (s *TournamentService) GetArchive(ctx context.Context) ([]store.ArchivedTournament, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}
	return s.store.GetArchive(ctx, userID)
}

func (s *TournamentService) GetLeaderboard(ctx context.Context) ([]store.LeaderboardEntry, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}
	return s.store.GetLeaderboard(ctx, userID, LeaderboardSize)
}

// calendarDate keeps the day t falls on in its own location, stored as UTC midnight.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
