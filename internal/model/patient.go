package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientStatus is the patient lifecycle state. Discharged is terminal;
// there is no transition out of it short of a new intake.
type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "active"
	PatientStatusInactive   PatientStatus = "inactive"
	PatientStatusDischarged PatientStatus = "discharged"
)

// ParsePatientStatus validates a status string against the closed set.
func ParsePatientStatus(s string) (PatientStatus, bool) {
	switch PatientStatus(s) {
	case PatientStatusActive, PatientStatusInactive, PatientStatusDischarged:
		return PatientStatus(s), true
	}
	return "", false
}

type Patient struct {
	Base
	FirstName           string        `db:"first_name" json:"first_name"`
	LastName            string        `db:"last_name" json:"last_name"`
	Email               string        `db:"email" json:"email"`
	Phone               string        `db:"phone" json:"phone,omitempty"`
	DateOfBirth         time.Time     `db:"date_of_birth" json:"date_of_birth"`
	Status              PatientStatus `db:"status" json:"status"`
	LevelOfCare         *string       `db:"level_of_care" json:"level_of_care,omitempty"`
	AssignedTherapistID *uuid.UUID    `db:"assigned_therapist_id" json:"assigned_therapist_id,omitempty"`
	AssignedClinicalID  *uuid.UUID    `db:"assigned_clinical_id" json:"assigned_clinical_id,omitempty"`
	IntakeDate          time.Time     `db:"intake_date" json:"intake_date"`
	DischargeDate       *time.Time    `db:"discharge_date" json:"discharge_date,omitempty"`
}

type CreatePatientRequest struct {
	FirstName           string     `json:"first_name" binding:"required"`
	LastName            string     `json:"last_name" binding:"required"`
	Email               string     `json:"email" binding:"required,email"`
	Phone               string     `json:"phone"`
	DateOfBirth         time.Time  `json:"date_of_birth" binding:"required"`
	LevelOfCare         *string    `json:"level_of_care"`
	AssignedTherapistID *uuid.UUID `json:"assigned_therapist_id"`
	AssignedClinicalID  *uuid.UUID `json:"assigned_clinical_id"`
}

type UpdatePatientRequest struct {
	FirstName           *string    `json:"first_name"`
	LastName            *string    `json:"last_name"`
	Email               *string    `json:"email" binding:"omitempty,email"`
	Phone               *string    `json:"phone"`
	LevelOfCare         *string    `json:"level_of_care"`
	AssignedTherapistID *uuid.UUID `json:"assigned_therapist_id"`
	AssignedClinicalID  *uuid.UUID `json:"assigned_clinical_id"`
}

type SetPatientStatusRequest struct {
	Status string `json:"status" binding:"required,patientstatus"`
}

type PatientFilters struct {
	Status      PatientStatus
	TherapistID uuid.UUID
	SearchTerm  string
}
