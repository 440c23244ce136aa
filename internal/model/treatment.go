package model

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentRecord is one clinical note in a patient's treatment history.
// GoalsComplete and the clinician sign-off feed the discharge criteria
// evaluator.
type TreatmentRecord struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	ClinicianID   uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	SessionDate   time.Time  `db:"session_date" json:"session_date"`
	Type          string     `db:"type" json:"type"`
	Notes         string     `db:"notes" json:"notes"`
	GoalsComplete bool       `db:"goals_complete" json:"goals_complete"`
	SignedOffBy   *uuid.UUID `db:"signed_off_by" json:"signed_off_by,omitempty"`
	SignedOffAt   *time.Time `db:"signed_off_at" json:"signed_off_at,omitempty"`
}

type CreateTreatmentRecordRequest struct {
	SessionDate   time.Time `json:"session_date" binding:"required"`
	Type          string    `json:"type" binding:"required,oneof=intake session assessment review"`
	Notes         string    `json:"notes" binding:"required"`
	GoalsComplete bool      `json:"goals_complete"`
}

type TreatmentRecordFilters struct {
	Type      string
	StartDate time.Time
	EndDate   time.Time
}
