package statuses

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   MatchStatus
		wantOK bool
	}{
		{"waiting", WaitingForOpponent, true},
		{"waiting_for_opponent", WaitingForOpponent, true},
		{"active", InProgress, true},
		{"in_progress", InProgress, true},
		{"finished", Finished, true},
		{"paused", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
