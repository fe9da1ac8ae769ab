package bracket

import "github.com/google/uuid"

// Participant is a seeded competitor. Seed follows insertion order, starting at 1.
type Participant struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`
	Name         string    `db:"name"`
	Seed         int       `db:"seed"`
}
