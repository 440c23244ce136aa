package model

import (
	"time"

	"github.com/google/uuid"
)

// DischargeRequestStatus is the review state of a human-initiated discharge
// request. Approved and denied are terminal.
type DischargeRequestStatus string

const (
	DischargeRequestPending  DischargeRequestStatus = "pending"
	DischargeRequestApproved DischargeRequestStatus = "approved"
	DischargeRequestDenied   DischargeRequestStatus = "denied"
)

// ParseDischargeDecision accepts only the two terminal review outcomes.
func ParseDischargeDecision(s string) (DischargeRequestStatus, bool) {
	switch DischargeRequestStatus(s) {
	case DischargeRequestApproved, DischargeRequestDenied:
		return DischargeRequestStatus(s), true
	}
	return "", false
}

// DischargeRequest is a proposal to discharge a patient, reviewed by a
// second staff member. ReviewedBy/ReviewedAt/ReviewNotes are set iff the
// status has left pending.
type DischargeRequest struct {
	ID              uuid.UUID              `db:"id" json:"id"`
	PatientID       uuid.UUID              `db:"patient_id" json:"patient_id"`
	RequestedBy     uuid.UUID              `db:"requested_by" json:"requested_by"`
	RequestedByRole StaffRole              `db:"requested_by_role" json:"requested_by_role"`
	RequestedAt     time.Time              `db:"requested_at" json:"requested_at"`
	Reason          string                 `db:"reason" json:"reason"`
	Status          DischargeRequestStatus `db:"status" json:"status"`
	ReviewedBy      *uuid.UUID             `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time             `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes     *string                `db:"review_notes" json:"review_notes,omitempty"`
}

// DischargeCriteriaResult is the outcome of one criteria evaluation. It is
// transient: never persisted, only cached against its evaluation token.
type DischargeCriteriaResult struct {
	PatientID       uuid.UUID `json:"patient_id"`
	ShouldDischarge bool      `json:"should_discharge"`
	Reason          string    `json:"reason"`
	Criteria        []string  `json:"criteria"`
	EvaluationToken string    `json:"evaluation_token,omitempty"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

type CreateDischargeRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ReviewDischargeRequestRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approved denied"`
	Notes    *string `json:"notes"`
}

type AutoDischargeRequest struct {
	EvaluationToken string `json:"evaluation_token" binding:"required"`
}
