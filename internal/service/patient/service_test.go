package patient

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	auditService "github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/metrics"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient

	// casResult forces the next SetStatus outcome to simulate a lost race.
	forceCASFailure bool
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePatientRepo) SetStatus(_ context.Context, id uuid.UUID, expected, next model.PatientStatus, dischargeDate *time.Time) (bool, error) {
	if r.forceCASFailure {
		return false, nil
	}
	p, ok := r.patients[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	p.Status = next
	p.DischargeDate = dischargeDate
	return true, nil
}

func (r *fakePatientRepo) Discharge(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	p, ok := r.patients[id]
	if !ok || p.Status == model.PatientStatusDischarged {
		return false, nil
	}
	p.Status = model.PatientStatusDischarged
	p.DischargeDate = &at
	return true, nil
}

func (r *fakePatientRepo) ClearLevelOfCare(_ context.Context, id uuid.UUID) error {
	if p, ok := r.patients[id]; ok {
		p.LevelOfCare = nil
	}
	return nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.events = append(r.events, e)
	return nil
}
func (r *fakeOutboxRepo) GetPendingWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string, _ *time.Time) error {
	return nil
}
func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, l *model.AuditLog) error {
	r.entries = append(r.entries, l)
	return nil
}
func (r *fakeAuditRepo) List(_ context.Context, _ *model.AuditFilters) ([]*model.AuditLog, error) {
	return r.entries, nil
}
func (r *fakeAuditRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

var _ repository.PatientRepository = (*fakePatientRepo)(nil)
var _ repository.OutboxRepository = (*fakeOutboxRepo)(nil)

func newTestService() (*Service, *fakePatientRepo, *fakeOutboxRepo, *fakeAuditRepo) {
	repo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	outbox := &fakeOutboxRepo{}
	auditRepo := &fakeAuditRepo{}
	quiet := logger.NewLogger(&logger.Config{Output: io.Discard})

	svc := NewService(repo, outbox, auditService.NewService(auditRepo, quiet), metrics.NewTestMetrics(), quiet)
	return svc, repo, outbox, auditRepo
}

func seedPatient(repo *fakePatientRepo, status model.PatientStatus) *model.Patient {
	loc := "outpatient"
	p := &model.Patient{
		Base:        model.Base{ID: uuid.New()},
		FirstName:   "Sam",
		LastName:    "Okafor",
		Status:      status,
		LevelOfCare: &loc,
	}
	repo.patients[p.ID] = p
	return p
}

func TestCreatePatient(t *testing.T) {
	svc, repo, outbox, _ := newTestService()

	created, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		FirstName:   "Ada",
		LastName:    "Nwosu",
		Email:       "ada@example.com",
		DateOfBirth: time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC),
	}, uuid.New())
	require.NoError(t, err)

	// Intake always starts active, regardless of what the caller wanted.
	assert.Equal(t, model.PatientStatusActive, created.Status)
	assert.False(t, created.IntakeDate.IsZero())
	assert.Nil(t, created.DischargeDate)
	assert.Contains(t, repo.patients, created.ID)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventPatientCreated, outbox.events[0].EventType)
}

func TestUpdatePatientDoesNotTouchStatus(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := seedPatient(repo, model.PatientStatusInactive)

	name := "Renamed"
	updated, err := svc.UpdatePatient(context.Background(), p.ID, &model.UpdatePatientRequest{FirstName: &name}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, model.PatientStatusInactive, updated.Status)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("clinician deactivates", func(t *testing.T) {
		svc, repo, outbox, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusActive)

		updated, err := svc.SetStatus(ctx, p.ID, model.PatientStatusInactive, actor, model.RoleClinician)
		require.NoError(t, err)
		assert.Equal(t, model.PatientStatusInactive, updated.Status)
		require.Len(t, outbox.events, 1)
		assert.Equal(t, model.EventPatientStatusChanged, outbox.events[0].EventType)
	})

	t.Run("frontdesk is refused", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusActive)

		_, err := svc.SetStatus(ctx, p.ID, model.PatientStatusInactive, actor, model.RoleFrontDesk)
		assert.True(t, errors.Is(err, errors.ErrForbidden))
		assert.Equal(t, model.PatientStatusActive, repo.patients[p.ID].Status)
	})

	t.Run("supervisor discharges manually", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusActive)

		updated, err := svc.SetStatus(ctx, p.ID, model.PatientStatusDischarged, actor, model.RoleSupervisor)
		require.NoError(t, err)
		assert.Equal(t, model.PatientStatusDischarged, updated.Status)
		assert.NotNil(t, updated.DischargeDate)
	})

	t.Run("clinician may not discharge manually", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusActive)

		_, err := svc.SetStatus(ctx, p.ID, model.PatientStatusDischarged, actor, model.RoleClinician)
		assert.True(t, errors.Is(err, errors.ErrForbidden))
	})

	t.Run("discharged is terminal", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusDischarged)

		_, err := svc.SetStatus(ctx, p.ID, model.PatientStatusActive, actor, model.RoleAdmin)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("no-op transition is rejected", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusActive)

		_, err := svc.SetStatus(ctx, p.ID, model.PatientStatusActive, actor, model.RoleAdmin)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("lost race surfaces as conflict", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		p := seedPatient(repo, model.PatientStatusActive)
		repo.forceCASFailure = true

		_, err := svc.SetStatus(ctx, p.ID, model.PatientStatusInactive, actor, model.RoleClinician)
		assert.True(t, errors.Is(err, errors.ErrConflict))
	})
}

func TestRemoveFromProgram(t *testing.T) {
	svc, repo, _, audit := newTestService()
	p := seedPatient(repo, model.PatientStatusActive)

	updated, err := svc.RemoveFromProgram(context.Background(), p.ID, uuid.New())
	require.NoError(t, err)

	// Program removal is not a lifecycle event.
	assert.Nil(t, updated.LevelOfCare)
	assert.Equal(t, model.PatientStatusActive, updated.Status)
	assert.Equal(t, model.PatientStatusActive, repo.patients[p.ID].Status)
	assert.Nil(t, repo.patients[p.ID].LevelOfCare)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "remove_from_program", audit.entries[0].Action)
}
