package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentUpcoming   TournamentStatus = "upcoming"
	TournamentInProgress TournamentStatus = "in-progress"
	TournamentCompleted  TournamentStatus = "completed"
)

var statusRank = map[TournamentStatus]int{
	TournamentUpcoming:   0,
	TournamentInProgress: 1,
	TournamentCompleted:  2,
}

func (s TournamentStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Advance returns the later of the two statuses. Status never moves backwards.
func (s TournamentStatus) Advance(to TournamentStatus) TournamentStatus {
	if statusRank[to] > statusRank[s] {
		return to
	}
	return s
}

type Tournament struct {
	ID        uuid.UUID        `db:"id"`
	OwnerID   uuid.UUID        `db:"owner_id"`
	Name      string           `db:"name" json:"name"`
	Slug      string           `db:"slug" json:"slug"`
	Date      time.Time        `db:"date" json:"date"`
	Status    TournamentStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
}
