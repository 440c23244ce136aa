package model

import "time"

// OperationalSummary is the practice-level snapshot served by the reporting
// endpoint.
type OperationalSummary struct {
	ActivePatients           int       `db:"active_patients" json:"active_patients"`
	InactivePatients         int       `db:"inactive_patients" json:"inactive_patients"`
	DischargedPatients       int       `db:"discharged_patients" json:"discharged_patients"`
	PendingDischargeRequests int       `db:"pending_discharge_requests" json:"pending_discharge_requests"`
	DischargesInPeriod       int       `db:"discharges_in_period" json:"discharges_in_period"`
	IntakesInPeriod          int       `db:"intakes_in_period" json:"intakes_in_period"`
	PeriodStart              time.Time `json:"period_start"`
	PeriodEnd                time.Time `json:"period_end"`
}
