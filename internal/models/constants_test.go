package models

import "testing"

func TestCanTransitProject(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{ProjectStatusPosted, ProjectStatusInProgress, true},
		{ProjectStatusPosted, ProjectStatusCancelled, true},
		{ProjectStatusPosted, ProjectStatusCompleted, false},
		{ProjectStatusPosted, ProjectStatusPaid, false},
		{ProjectStatusInProgress, ProjectStatusCompleted, true},
		{ProjectStatusInProgress, ProjectStatusPaid, true},
		{ProjectStatusInProgress, ProjectStatusCancelled, true},
		{ProjectStatusInProgress, ProjectStatusPosted, false},
		{ProjectStatusCompleted, ProjectStatusPaid, true},
		{ProjectStatusCompleted, ProjectStatusCancelled, true},
		{ProjectStatusCompleted, ProjectStatusInProgress, false},
		{ProjectStatusPaid, ProjectStatusCancelled, false},
		{ProjectStatusCancelled, ProjectStatusPosted, false},
		{"unknown", ProjectStatusPosted, false},
	}

	for _, c := range cases {
		if got := CanTransitProject(c.from, c.to); got != c.allowed {
			t.Errorf("переход %s → %s: ожидали %v, получили %v", c.from, c.to, c.allowed, got)
		}
	}
}
