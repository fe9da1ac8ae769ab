package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
	"github.com/AdamBeresnev/tourny-app/internal/middleware"
	users "github.com/AdamBeresnev/tourny-app/internal/user"
	"github.com/AdamBeresnev/tourny-app/internal/utils"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func tournamentURL(id uuid.UUID) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/tournaments/%s", id))
}

func shareURL(slug string) templ.SafeURL {
	return templ.URL("/t/" + slug)
}

func matchURL(id uuid.UUID) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/matches/%s", id))
}

func resultURL(id uuid.UUID) string {
	return fmt.Sprintf("/matches/%s/result", id)
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func participantNames(participants []bracket.Participant) string {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func slots(m bracket.Match) []*uuid.UUID {
	return []*uuid.UUID{m.ParticipantAID, m.ParticipantBID}
}

// slotState marks a bracket slot once its match is decided.
func slotState(m bracket.Match, id *uuid.UUID) string {
	switch {
	case m.IsWinner(id):
		return "winner"
	case m.IsLoser(id):
		return "loser"
	default:
		return ""
	}
}

func orDash(s *string) string {
	if v := utils.OrZero(s); v != "" {
		return v
	}
	return "-"
}
