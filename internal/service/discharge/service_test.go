package discharge

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
	return nil, nil
}

func (r *fakePatientRepo) SetStatus(_ context.Context, id uuid.UUID, expected, next model.PatientStatus, dischargeDate *time.Time) (bool, error) {
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

type fakeDischargeRepo struct {
	patients *fakePatientRepo
	requests map[uuid.UUID]*model.DischargeRequest
}

func (r *fakeDischargeRepo) Create(_ context.Context, req *model.DischargeRequest) error {
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeDischargeRepo) Get(_ context.Context, id uuid.UUID) (*model.DischargeRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, errors.NotFound("discharge request", nil)
	}
	cp := *req
	return &cp, nil
}

func (r *fakeDischargeRepo) List(_ context.Context, patientID *uuid.UUID) ([]*model.DischargeRequest, error) {
	var out []*model.DischargeRequest
	for _, req := range r.requests {
		if patientID == nil || req.PatientID == *patientID {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDischargeRepo) HasPending(_ context.Context, patientID uuid.UUID) (bool, error) {
	for _, req := range r.requests {
		if req.PatientID == patientID && req.Status == model.DischargeRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDischargeRepo) Review(ctx context.Context, req *model.DischargeRequest, dischargePatient bool) (bool, error) {
	stored, ok := r.requests[req.ID]
	if !ok || stored.Status != model.DischargeRequestPending {
		return false, nil
	}
	if dischargePatient {
		changed, err := r.patients.Discharge(ctx, req.PatientID, *req.ReviewedAt)
		if err != nil {
			return false, err
		}
		if !changed {
			return false, errors.Conflict("patient was already discharged by another action")
		}
	}
	cp := *req
	r.requests[req.ID] = &cp
	return true, nil
}

type fakeAppointmentRepo struct {
	completed   int
	lastContact *time.Time
	upcoming    bool
}

func (r *fakeAppointmentRepo) Create(_ context.Context, _ *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, errors.NotFound("appointment", nil)
}
func (r *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) CountCompleted(_ context.Context, _ uuid.UUID) (int, error) {
	return r.completed, nil
}
func (r *fakeAppointmentRepo) LastContact(_ context.Context, _ uuid.UUID) (*time.Time, error) {
	return r.lastContact, nil
}
func (r *fakeAppointmentRepo) HasUpcoming(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
	return r.upcoming, nil
}

type fakeTreatmentRepo struct {
	goalsComplete bool
	hasSignOff    bool
}

func (r *fakeTreatmentRepo) Create(_ context.Context, _ *model.TreatmentRecord) error { return nil }
func (r *fakeTreatmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.TreatmentRecord, error) {
	return nil, errors.NotFound("treatment record", nil)
}
func (r *fakeTreatmentRepo) List(_ context.Context, _ uuid.UUID, _ *model.TreatmentRecordFilters) ([]*model.TreatmentRecord, error) {
	return nil, nil
}
func (r *fakeTreatmentRepo) SignOff(_ context.Context, _, _ uuid.UUID) error { return nil }
func (r *fakeTreatmentRepo) GoalsComplete(_ context.Context, _ uuid.UUID) (bool, error) {
	return r.goalsComplete, nil
}
func (r *fakeTreatmentRepo) HasSignOff(_ context.Context, _ uuid.UUID) (bool, error) {
	return r.hasSignOff, nil
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

func (r *fakeOutboxRepo) eventTypes() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
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
var _ repository.DischargeRequestRepository = (*fakeDischargeRepo)(nil)
var _ repository.AppointmentRepository = (*fakeAppointmentRepo)(nil)
var _ repository.TreatmentRecordRepository = (*fakeTreatmentRepo)(nil)
var _ repository.OutboxRepository = (*fakeOutboxRepo)(nil)

type harness struct {
	svc      *Service
	patients *fakePatientRepo
	requests *fakeDischargeRepo
	appts    *fakeAppointmentRepo
	records  *fakeTreatmentRepo
	outbox   *fakeOutboxRepo
	audit    *fakeAuditRepo
}

func newHarness() *harness {
	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	requests := &fakeDischargeRepo{patients: patients, requests: make(map[uuid.UUID]*model.DischargeRequest)}
	appts := &fakeAppointmentRepo{}
	records := &fakeTreatmentRepo{}
	outbox := &fakeOutboxRepo{}
	auditRepo := &fakeAuditRepo{}

	quiet := logger.NewLogger(&logger.Config{Output: io.Discard})

	svc := NewService(
		patients, requests, appts, records, outbox,
		auditService.NewService(auditRepo, quiet),
		metrics.NewTestMetrics(),
		quiet,
		DefaultConfig(),
	)

	return &harness{
		svc:      svc,
		patients: patients,
		requests: requests,
		appts:    appts,
		records:  records,
		outbox:   outbox,
		audit:    auditRepo,
	}
}

func (h *harness) addPatient(status model.PatientStatus) *model.Patient {
	p := &model.Patient{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Jordan",
		LastName:  "Reyes",
		Status:    status,
	}
	h.patients.patients[p.ID] = p
	return p
}

// markDischargeable sets every criteria input so the evaluator passes.
func (h *harness) markDischargeable() {
	last := time.Now().Add(-45 * 24 * time.Hour)
	h.appts.completed = 5
	h.appts.lastContact = &last
	h.appts.upcoming = false
	h.records.goalsComplete = true
	h.records.hasSignOff = true
}

func TestEvaluateDischarge(t *testing.T) {
	ctx := context.Background()

	t.Run("eligible patient gets a token", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()

		result, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, result.ShouldDischarge)
		assert.Equal(t, "all discharge criteria met", result.Reason)
		assert.Len(t, result.Criteria, 5)
		assert.NotEmpty(t, result.EvaluationToken)
	})

	t.Run("ineligible patient gets no token", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()
		h.appts.upcoming = true

		result, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, result.ShouldDischarge)
		assert.Equal(t, "discharge blocked: 4 of 5 criteria met", result.Reason)
		assert.Empty(t, result.EvaluationToken)
	})

	t.Run("inactive patient can be evaluated", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusInactive)
		h.markDischargeable()

		result, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, result.ShouldDischarge)
	})

	t.Run("discharged patient is rejected", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusDischarged)

		_, err := h.svc.EvaluateDischarge(ctx, p.ID)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("unknown patient", func(t *testing.T) {
		h := newHarness()
		_, err := h.svc.EvaluateDischarge(ctx, uuid.New())
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("evaluation mutates nothing", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()

		_, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PatientStatusActive, h.patients.patients[p.ID].Status)
		assert.Empty(t, h.outbox.events)
	})
}

func TestAutoDischarge(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("happy path", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()

		result, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)

		discharged, err := h.svc.AutoDischarge(ctx, p.ID, result.EvaluationToken, actor, model.RoleClinician)
		require.NoError(t, err)
		assert.Equal(t, model.PatientStatusDischarged, discharged.Status)
		assert.NotNil(t, discharged.DischargeDate)
		assert.Equal(t, model.PatientStatusDischarged, h.patients.patients[p.ID].Status)
		assert.Equal(t, []string{model.EventPatientDischarged}, h.outbox.eventTypes())
	})

	t.Run("token is single use", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()

		result, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)

		_, err = h.svc.AutoDischarge(ctx, p.ID, result.EvaluationToken, actor, model.RoleClinician)
		require.NoError(t, err)

		_, err = h.svc.AutoDischarge(ctx, p.ID, result.EvaluationToken, actor, model.RoleClinician)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("unknown token", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)

		_, err := h.svc.AutoDischarge(ctx, p.ID, "no-such-token", actor, model.RoleClinician)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("token bound to a different patient", func(t *testing.T) {
		h := newHarness()
		p1 := h.addPatient(model.PatientStatusActive)
		p2 := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()

		result, err := h.svc.EvaluateDischarge(ctx, p1.ID)
		require.NoError(t, err)

		_, err = h.svc.AutoDischarge(ctx, p2.ID, result.EvaluationToken, actor, model.RoleClinician)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
		assert.Equal(t, model.PatientStatusActive, h.patients.patients[p2.ID].Status)
	})

	t.Run("concurrent discharge loses cleanly", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)
		h.markDischargeable()

		result, err := h.svc.EvaluateDischarge(ctx, p.ID)
		require.NoError(t, err)

		// Another actor wins the race after the evaluation.
		h.patients.patients[p.ID].Status = model.PatientStatusDischarged

		_, err = h.svc.AutoDischarge(ctx, p.ID, result.EvaluationToken, actor, model.RoleClinician)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})
}

func TestCreateDischargeRequest(t *testing.T) {
	ctx := context.Background()
	requester := uuid.New()

	t.Run("happy path", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)

		req, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.RoleTherapist, "Patient relocating")
		require.NoError(t, err)
		assert.Equal(t, model.DischargeRequestPending, req.Status)
		assert.Equal(t, requester, req.RequestedBy)
		assert.Equal(t, model.RoleTherapist, req.RequestedByRole)
		assert.Equal(t, "Patient relocating", req.Reason)
		assert.Nil(t, req.ReviewedBy)
		assert.Nil(t, req.ReviewedAt)
		assert.False(t, req.RequestedAt.IsZero())
		assert.Equal(t, []string{model.EventDischargeRequested}, h.outbox.eventTypes())
	})

	t.Run("frontdesk may request what it cannot do directly", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)

		req, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.RoleFrontDesk, "family request")
		require.NoError(t, err)
		assert.Equal(t, model.DischargeRequestPending, req.Status)
	})

	t.Run("empty reason", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)

		_, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.RoleTherapist, "")
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})

	t.Run("unknown role", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)

		_, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.StaffRole("janitor"), "why not")
		assert.True(t, errors.Is(err, errors.ErrForbidden))
	})

	t.Run("discharged patient", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusDischarged)

		_, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.RoleTherapist, "already gone")
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
	})

	t.Run("second pending request conflicts", func(t *testing.T) {
		h := newHarness()
		p := h.addPatient(model.PatientStatusActive)

		_, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.RoleTherapist, "first")
		require.NoError(t, err)

		_, err = h.svc.CreateDischargeRequest(ctx, p.ID, uuid.New(), model.RoleClinician, "second")
		assert.True(t, errors.Is(err, errors.ErrConflict))
	})
}

func TestReviewDischargeRequest(t *testing.T) {
	ctx := context.Background()
	requester := uuid.New()
	reviewer := uuid.New()

	pendingRequest := func(h *harness) (*model.Patient, *model.DischargeRequest) {
		p := h.addPatient(model.PatientStatusActive)
		req, err := h.svc.CreateDischargeRequest(ctx, p.ID, requester, model.RoleTherapist, "Patient relocating")
		if err != nil {
			panic(err)
		}
		return p, req
	}

	t.Run("approval discharges the patient", func(t *testing.T) {
		h := newHarness()
		p, req := pendingRequest(h)

		notes := "confirmed with family"
		reviewed, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleSupervisor, model.DischargeRequestApproved, &notes)
		require.NoError(t, err)
		assert.Equal(t, model.DischargeRequestApproved, reviewed.Status)
		require.NotNil(t, reviewed.ReviewedBy)
		assert.Equal(t, reviewer, *reviewed.ReviewedBy)
		assert.NotNil(t, reviewed.ReviewedAt)
		assert.Equal(t, &notes, reviewed.ReviewNotes)
		assert.Equal(t, model.PatientStatusDischarged, h.patients.patients[p.ID].Status)
		assert.Contains(t, h.outbox.eventTypes(), model.EventDischargeReviewed)
		assert.Contains(t, h.outbox.eventTypes(), model.EventPatientDischarged)
	})

	t.Run("denial leaves the patient untouched", func(t *testing.T) {
		h := newHarness()
		p, req := pendingRequest(h)

		reviewed, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleSupervisor, model.DischargeRequestDenied, nil)
		require.NoError(t, err)
		assert.Equal(t, model.DischargeRequestDenied, reviewed.Status)
		assert.Equal(t, model.PatientStatusActive, h.patients.patients[p.ID].Status)
		assert.NotContains(t, h.outbox.eventTypes(), model.EventPatientDischarged)
	})

	t.Run("admin may review", func(t *testing.T) {
		h := newHarness()
		_, req := pendingRequest(h)

		_, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleAdmin, model.DischargeRequestDenied, nil)
		assert.NoError(t, err)
	})

	t.Run("clinician may not review", func(t *testing.T) {
		h := newHarness()
		_, req := pendingRequest(h)

		_, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleClinician, model.DischargeRequestApproved, nil)
		assert.True(t, errors.Is(err, errors.ErrForbidden))
	})

	t.Run("requester may not review their own request", func(t *testing.T) {
		h := newHarness()
		_, req := pendingRequest(h)

		_, err := h.svc.ReviewDischargeRequest(ctx, req.ID, requester, model.RoleSupervisor, model.DischargeRequestApproved, nil)
		assert.True(t, errors.Is(err, errors.ErrForbidden))
	})

	t.Run("invalid decision", func(t *testing.T) {
		h := newHarness()
		_, req := pendingRequest(h)

		_, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleSupervisor, model.DischargeRequestStatus("maybe"), nil)
		assert.True(t, errors.Is(err, errors.ErrBadRequest))
	})

	t.Run("second review is rejected", func(t *testing.T) {
		h := newHarness()
		_, req := pendingRequest(h)

		_, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleSupervisor, model.DischargeRequestDenied, nil)
		require.NoError(t, err)

		_, err = h.svc.ReviewDischargeRequest(ctx, req.ID, uuid.New(), model.RoleAdmin, model.DischargeRequestApproved, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))

		// The first decision stands.
		stored := h.requests.requests[req.ID]
		assert.Equal(t, model.DischargeRequestDenied, stored.Status)
		assert.Equal(t, reviewer, *stored.ReviewedBy)
	})

	t.Run("unknown request", func(t *testing.T) {
		h := newHarness()
		_, err := h.svc.ReviewDischargeRequest(ctx, uuid.New(), reviewer, model.RoleSupervisor, model.DischargeRequestApproved, nil)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("approval races a prior discharge", func(t *testing.T) {
		h := newHarness()
		p, req := pendingRequest(h)

		// Patient discharged out of band while the request sat pending.
		h.patients.patients[p.ID].Status = model.PatientStatusDischarged

		_, err := h.svc.ReviewDischargeRequest(ctx, req.ID, reviewer, model.RoleSupervisor, model.DischargeRequestApproved, nil)
		assert.True(t, errors.Is(err, errors.ErrConflict))
	})
}

func TestListDischargeRequests(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	p1 := h.addPatient(model.PatientStatusActive)
	p2 := h.addPatient(model.PatientStatusActive)

	_, err := h.svc.CreateDischargeRequest(ctx, p1.ID, uuid.New(), model.RoleTherapist, "one")
	require.NoError(t, err)
	_, err = h.svc.CreateDischargeRequest(ctx, p2.ID, uuid.New(), model.RoleTherapist, "two")
	require.NoError(t, err)

	all, err := h.svc.ListDischargeRequests(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := h.svc.ListDischargeRequests(ctx, &p1.ID)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, p1.ID, one[0].PatientID)
}
