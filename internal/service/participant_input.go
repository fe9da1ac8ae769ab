package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
)

const (
	MaxParticipantNameLength = 100
	MaxTournamentNameLength  = 100
)

// ParseParticipantNames reads one participant per line, skipping blank lines.
func ParseParticipantNames(text string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}

		if utf8.RuneCountInString(name) > MaxParticipantNameLength {
			return nil, fmt.Errorf("%w: participant name %q is longer than %d characters", bracket.ErrInvalidInput, name, MaxParticipantNameLength)
		}

		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: participant %q is listed twice", bracket.ErrInvalidInput, name)
		}
		seen[key] = true

		names = append(names, name)
	}

	return names, nil
}
