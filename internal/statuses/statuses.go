package statuses

// MatchStatus is the lifecycle stage of a match.
type MatchStatus string

const (
	WaitingForOpponent MatchStatus = "waiting_for_opponent"
	InProgress         MatchStatus = "in_progress"
	Finished           MatchStatus = "finished"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case WaitingForOpponent, InProgress, Finished:
		return true
	}
	return false
}

// Parse accepts the stored value and the short forms used in query strings.
func Parse(s string) (MatchStatus, bool) {
	switch s {
	case "waiting":
		return WaitingForOpponent, true
	case "active":
		return InProgress, true
	}
	if status := MatchStatus(s); status.Valid() {
		return status, true
	}
	return "", false
}
