package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)

	// SetStatus performs a compare-and-set on the status column. It reports
	// false when the row no longer carries the expected status, which means
	// a concurrent writer won.
	SetStatus(ctx context.Context, id uuid.UUID, expected, next model.PatientStatus, dischargeDate *time.Time) (bool, error)

	// Discharge transitions any non-discharged patient to discharged. False
	// means the patient was already discharged.
	Discharge(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// ClearLevelOfCare removes program membership. It never touches status.
	ClearLevelOfCare(ctx context.Context, id uuid.UUID) error
}

type DischargeRequestRepository interface {
	Create(ctx context.Context, req *model.DischargeRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.DischargeRequest, error)
	List(ctx context.Context, patientID *uuid.UUID) ([]*model.DischargeRequest, error)
	HasPending(ctx context.Context, patientID uuid.UUID) (bool, error)

	// Review applies the terminal decision in one transaction, guarded on
	// the request still being pending. When dischargePatient is set the
	// patient's discharged transition is part of the same transaction; if
	// the patient was concurrently discharged the whole transaction rolls
	// back. False means the pending guard failed.
	Review(ctx context.Context, req *model.DischargeRequest, dischargePatient bool) (bool, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)

	// History queries backing the discharge criteria evaluator.
	CountCompleted(ctx context.Context, patientID uuid.UUID) (int, error)
	LastContact(ctx context.Context, patientID uuid.UUID) (*time.Time, error)
	HasUpcoming(ctx context.Context, patientID uuid.UUID, after time.Time) (bool, error)
}

type TreatmentRecordRepository interface {
	Create(ctx context.Context, record *model.TreatmentRecord) error
	Get(ctx context.Context, id uuid.UUID) (*model.TreatmentRecord, error)
	List(ctx context.Context, patientID uuid.UUID, filters *model.TreatmentRecordFilters) ([]*model.TreatmentRecord, error)
	SignOff(ctx context.Context, id, staffID uuid.UUID) error

	// Latest-record flags backing the discharge criteria evaluator.
	GoalsComplete(ctx context.Context, patientID uuid.UUID) (bool, error)
	HasSignOff(ctx context.Context, patientID uuid.UUID) (bool, error)
}

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	List(ctx context.Context, filters *model.StaffFilters) ([]*model.Staff, error)
	ListByRole(ctx context.Context, min model.StaffRole) ([]*model.Staff, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListForStaff(ctx context.Context, staffID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, staffID uuid.UUID) error
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type ReportRepository interface {
	Summary(ctx context.Context, start, end time.Time) (*model.OperationalSummary, error)
}
