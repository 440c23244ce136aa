package discharge

import (
	"fmt"
	"time"
)

// criteriaInput is a snapshot of the history the predicates inspect,
// assembled once per evaluation so every predicate sees the same state.
type criteriaInput struct {
	CompletedSessions int
	LastContact       *time.Time
	HasUpcoming       bool
	GoalsComplete     bool
	HasSignOff        bool
	Now               time.Time
}

type criterion struct {
	Label string
	Met   func(in criteriaInput, cfg Config) bool
}

// dischargeCriteria is the fixed, ordered predicate list. Order is part of
// the contract: the criteria list in every result enumerates passing labels
// in this order, so audit trails stay comparable across evaluations.
// Discharge requires every predicate to pass; one failure blocks it.
var dischargeCriteria = []criterion{
	{
		Label: "minimum completed sessions reached",
		Met: func(in criteriaInput, cfg Config) bool {
			return in.CompletedSessions >= cfg.MinCompletedSessions
		},
	},
	{
		Label: "no appointments in last 30 days",
		Met: func(in criteriaInput, cfg Config) bool {
			if in.LastContact == nil {
				return true
			}
			return in.Now.Sub(*in.LastContact) >= time.Duration(cfg.InactivityDays)*24*time.Hour
		},
	},
	{
		Label: "no upcoming scheduled appointments",
		Met: func(in criteriaInput, cfg Config) bool {
			return !in.HasUpcoming
		},
	},
	{
		Label: "treatment goals marked complete",
		Met: func(in criteriaInput, cfg Config) bool {
			return in.GoalsComplete
		},
	},
	{
		Label: "clinician sign-off on file",
		Met: func(in criteriaInput, cfg Config) bool {
			return in.HasSignOff
		},
	},
}

// evaluateCriteria runs every predicate and returns the conjunctive verdict
// with the passing labels in declaration order.
func evaluateCriteria(in criteriaInput, cfg Config) (bool, []string, string) {
	passed := make([]string, 0, len(dischargeCriteria))
	for _, c := range dischargeCriteria {
		if c.Met(in, cfg) {
			passed = append(passed, c.Label)
		}
	}

	if len(passed) == len(dischargeCriteria) {
		return true, passed, "all discharge criteria met"
	}
	reason := fmt.Sprintf("discharge blocked: %d of %d criteria met", len(passed), len(dischargeCriteria))
	return false, passed, reason
}
