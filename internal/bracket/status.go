package bracket

// NextStatus applies a recorded result to the tournament lifecycle.
// The final round completes the tournament, any other result starts it.
func NextStatus(current TournamentStatus, res *Result) TournamentStatus {
	if res == nil {
		return current
	}
	if res.Completed {
		return current.Advance(TournamentCompleted)
	}
	return current.Advance(TournamentInProgress)
}

// DeriveStatus returns the status a match set implies on its own.
func DeriveStatus(matches []Match) TournamentStatus {
	maxRound := MaxRound(matches)
	status := TournamentUpcoming
	for _, m := range matches {
		if !m.IsDecided() {
			continue
		}
		if m.RoundNumber == maxRound {
			return TournamentCompleted
		}
		status = TournamentInProgress
	}
	return status
}
