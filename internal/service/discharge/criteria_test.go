package discharge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluateCriteria(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	allMet := criteriaInput{
		CompletedSessions: 5,
		LastContact:       timePtr(now.Add(-45 * 24 * time.Hour)),
		HasUpcoming:       false,
		GoalsComplete:     true,
		HasSignOff:        true,
		Now:               now,
	}

	tests := []struct {
		name       string
		mutate     func(in criteriaInput) criteriaInput
		want       bool
		wantPassed int
		wantReason string
	}{
		{
			name:       "all criteria met",
			mutate:     func(in criteriaInput) criteriaInput { return in },
			want:       true,
			wantPassed: 5,
			wantReason: "all discharge criteria met",
		},
		{
			name: "too few completed sessions",
			mutate: func(in criteriaInput) criteriaInput {
				in.CompletedSessions = 3
				return in
			},
			want:       false,
			wantPassed: 4,
			wantReason: "discharge blocked: 4 of 5 criteria met",
		},
		{
			name: "contact 29 days ago blocks",
			mutate: func(in criteriaInput) criteriaInput {
				in.LastContact = timePtr(now.Add(-29 * 24 * time.Hour))
				return in
			},
			want:       false,
			wantPassed: 4,
		},
		{
			name: "contact exactly 30 days ago passes",
			mutate: func(in criteriaInput) criteriaInput {
				in.LastContact = timePtr(now.Add(-30 * 24 * time.Hour))
				return in
			},
			want:       true,
			wantPassed: 5,
		},
		{
			name: "no contact history counts as inactive",
			mutate: func(in criteriaInput) criteriaInput {
				in.LastContact = nil
				return in
			},
			want:       true,
			wantPassed: 5,
		},
		{
			name: "upcoming appointment blocks",
			mutate: func(in criteriaInput) criteriaInput {
				in.HasUpcoming = true
				return in
			},
			want:       false,
			wantPassed: 4,
		},
		{
			name: "goals incomplete blocks",
			mutate: func(in criteriaInput) criteriaInput {
				in.GoalsComplete = false
				return in
			},
			want:       false,
			wantPassed: 4,
		},
		{
			name: "missing sign-off blocks",
			mutate: func(in criteriaInput) criteriaInput {
				in.HasSignOff = false
				return in
			},
			want:       false,
			wantPassed: 4,
		},
		{
			name: "everything failing",
			mutate: func(in criteriaInput) criteriaInput {
				return criteriaInput{
					CompletedSessions: 0,
					LastContact:       timePtr(now.Add(-24 * time.Hour)),
					HasUpcoming:       true,
					GoalsComplete:     false,
					HasSignOff:        false,
					Now:               now,
				}
			},
			want:       false,
			wantPassed: 0,
			wantReason: "discharge blocked: 0 of 5 criteria met",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			should, passed, reason := evaluateCriteria(tt.mutate(allMet), cfg)
			assert.Equal(t, tt.want, should)
			assert.Len(t, passed, tt.wantPassed)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

// The passing labels always come back in declaration order, regardless of
// which predicates fail.
func TestEvaluateCriteriaLabelOrder(t *testing.T) {
	now := time.Now()
	in := criteriaInput{
		CompletedSessions: 10,
		LastContact:       nil,
		HasUpcoming:       true,
		GoalsComplete:     true,
		HasSignOff:        true,
		Now:               now,
	}

	_, passed, _ := evaluateCriteria(in, DefaultConfig())
	assert.Equal(t, []string{
		"minimum completed sessions reached",
		"no appointments in last 30 days",
		"treatment goals marked complete",
		"clinician sign-off on file",
	}, passed)
}

func TestEvaluateCriteriaCustomThresholds(t *testing.T) {
	now := time.Now()
	cfg := Config{MinCompletedSessions: 8, InactivityDays: 60, TokenTTL: time.Minute}

	in := criteriaInput{
		CompletedSessions: 5,
		LastContact:       timePtr(now.Add(-45 * 24 * time.Hour)),
		GoalsComplete:     true,
		HasSignOff:        true,
		Now:               now,
	}

	should, passed, _ := evaluateCriteria(in, cfg)
	assert.False(t, should)
	// 45 days of inactivity is not enough against a 60 day threshold, and
	// 5 sessions miss the raised minimum.
	assert.Len(t, passed, 3)
}
