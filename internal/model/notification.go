package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationDischargeRequested NotificationType = "discharge_requested"
	NotificationDischargeReviewed  NotificationType = "discharge_reviewed"
	NotificationPatientDischarged  NotificationType = "patient_discharged"
	NotificationStatusChanged      NotificationType = "patient_status_changed"
)

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	StaffID   uuid.UUID        `db:"staff_id" json:"staff_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Body      string           `db:"body" json:"body"`
	PatientID *uuid.UUID       `db:"patient_id" json:"patient_id,omitempty"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
