package discharge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/lifecycle"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/metrics"
)

// Config holds the evaluator thresholds and the evaluation-token lifetime.
type Config struct {
	MinCompletedSessions int
	InactivityDays       int
	TokenTTL             time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinCompletedSessions: 4,
		InactivityDays:       30,
		TokenTTL:             5 * time.Minute,
	}
}

type DischargeService interface {
	EvaluateDischarge(ctx context.Context, patientID uuid.UUID) (*model.DischargeCriteriaResult, error)
	AutoDischarge(ctx context.Context, patientID uuid.UUID, token string, actorID uuid.UUID, role model.StaffRole) (*model.Patient, error)
	CreateDischargeRequest(ctx context.Context, patientID, requestedBy uuid.UUID, role model.StaffRole, reason string) (*model.DischargeRequest, error)
	ReviewDischargeRequest(ctx context.Context, requestID, reviewerID uuid.UUID, role model.StaffRole, decision model.DischargeRequestStatus, notes *string) (*model.DischargeRequest, error)
	ListDischargeRequests(ctx context.Context, patientID *uuid.UUID) ([]*model.DischargeRequest, error)
}

type Service struct {
	patients repository.PatientRepository
	requests repository.DischargeRequestRepository
	appts    repository.AppointmentRepository
	records  repository.TreatmentRecordRepository
	outbox   repository.OutboxRepository
	auditor  *audit.Service
	metrics  *metrics.Metrics
	logger   *logger.Logger
	cfg      Config

	// evaluations binds a token to its result for the token's TTL. The
	// token is the only way to act on an evaluation, so auto-discharge can
	// never run against criteria the caller did not just see.
	evaluations *cache.Cache
}

func NewService(
	patients repository.PatientRepository,
	requests repository.DischargeRequestRepository,
	appts repository.AppointmentRepository,
	records repository.TreatmentRecordRepository,
	outbox repository.OutboxRepository,
	auditor *audit.Service,
	m *metrics.Metrics,
	logger *logger.Logger,
	cfg Config,
) *Service {
	if cfg.TokenTTL <= 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		patients:    patients,
		requests:    requests,
		appts:       appts,
		records:     records,
		outbox:      outbox,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
		cfg:         cfg,
		evaluations: cache.New(cfg.TokenTTL, 2*cfg.TokenTTL),
	}
}

// EvaluateDischarge runs the criteria predicates against the patient's
// appointment and treatment history. It mutates nothing.
func (s *Service) EvaluateDischarge(ctx context.Context, patientID uuid.UUID) (*model.DischargeCriteriaResult, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Status == model.PatientStatusDischarged {
		return nil, errors.InvalidState("patient is already discharged; criteria cannot be re-evaluated")
	}

	now := time.Now()
	in := criteriaInput{Now: now}

	if in.CompletedSessions, err = s.appts.CountCompleted(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to load session count: %w", err)
	}
	if in.LastContact, err = s.appts.LastContact(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to load last contact: %w", err)
	}
	if in.HasUpcoming, err = s.appts.HasUpcoming(ctx, patientID, now); err != nil {
		return nil, fmt.Errorf("failed to load upcoming appointments: %w", err)
	}
	if in.GoalsComplete, err = s.records.GoalsComplete(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to load goal status: %w", err)
	}
	if in.HasSignOff, err = s.records.HasSignOff(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to load sign-off status: %w", err)
	}

	should, passed, reason := evaluateCriteria(in, s.cfg)

	result := &model.DischargeCriteriaResult{
		PatientID:       patientID,
		ShouldDischarge: should,
		Reason:          reason,
		Criteria:        passed,
		EvaluatedAt:     now,
	}

	if should {
		result.EvaluationToken = uuid.New().String()
		s.evaluations.Set(result.EvaluationToken, result, cache.DefaultExpiration)
	}

	s.metrics.DischargeEvaluations.WithLabelValues(fmt.Sprintf("%t", should)).Inc()
	return result, nil
}

// AutoDischarge applies an evaluation that concluded ShouldDischarge. The
// token must come from a live evaluation of this exact patient; there is no
// implicit re-evaluation.
func (s *Service) AutoDischarge(ctx context.Context, patientID uuid.UUID, token string, actorID uuid.UUID, role model.StaffRole) (*model.Patient, error) {
	cached, ok := s.evaluations.Get(token)
	if !ok {
		return nil, errors.InvalidState("evaluation token is unknown or expired; re-run the evaluation")
	}
	eval := cached.(*model.DischargeCriteriaResult)
	if eval.PatientID != patientID || !eval.ShouldDischarge {
		return nil, errors.InvalidState("evaluation token does not authorize discharging this patient")
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(patient.Status, model.PatientStatusDischarged, role, lifecycle.ViaAutoDischarge); err != nil {
		return nil, err
	}

	now := time.Now()
	changed, err := s.patients.Discharge(ctx, patientID, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, errors.Conflict("patient was discharged by another actor")
	}

	// Tokens are single use; a second apply must fail loudly, not succeed.
	s.evaluations.Delete(token)

	patient.Status = model.PatientStatusDischarged
	patient.DischargeDate = &now

	s.publishEvent(ctx, model.EventPatientDischarged, map[string]interface{}{
		"patient_id": patientID,
		"via":        "auto_discharge",
		"criteria":   eval.Criteria,
	})
	s.auditor.Log(ctx, actorID, "auto_discharge", "patient", patientID, eval)
	s.metrics.AutoDischarges.Inc()

	return patient, nil
}

func (s *Service) CreateDischargeRequest(ctx context.Context, patientID, requestedBy uuid.UUID, role model.StaffRole, reason string) (*model.DischargeRequest, error) {
	if reason == "" {
		return nil, errors.BadRequest("a reason is required to request discharge", nil)
	}
	if _, ok := model.ParseStaffRole(string(role)); !ok {
		return nil, errors.Forbidden(fmt.Sprintf("unrecognized role %q", role))
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Status == model.PatientStatusDischarged {
		return nil, errors.InvalidState("patient is already discharged")
	}

	pending, err := s.requests.HasPending(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errors.Conflict("patient already has a pending discharge request")
	}

	req := &model.DischargeRequest{
		ID:              uuid.New(),
		PatientID:       patientID,
		RequestedBy:     requestedBy,
		RequestedByRole: role,
		RequestedAt:     time.Now(),
		Reason:          reason,
		Status:          model.DischargeRequestPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, model.EventDischargeRequested, req)
	s.auditor.Log(ctx, requestedBy, "create", "discharge_request", req.ID, req)

	return req, nil
}

// ReviewDischargeRequest moves a pending request to approved or denied.
// Approval discharges the patient in the same transaction; denial leaves
// the patient untouched.
func (s *Service) ReviewDischargeRequest(ctx context.Context, requestID, reviewerID uuid.UUID, role model.StaffRole, decision model.DischargeRequestStatus, notes *string) (*model.DischargeRequest, error) {
	if _, ok := model.ParseDischargeDecision(string(decision)); !ok {
		return nil, errors.BadRequest(fmt.Sprintf("decision must be approved or denied, got %q", decision), nil)
	}
	if !lifecycle.CanReviewDischarge(role) {
		return nil, errors.Forbidden(fmt.Sprintf("role %s may not review discharge requests", role))
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequestedBy == reviewerID {
		return nil, errors.Forbidden("a discharge request may not be reviewed by its requester")
	}
	if req.Status != model.DischargeRequestPending {
		return nil, errors.InvalidState(fmt.Sprintf("cannot %s: request already %s", decision, req.Status))
	}

	now := time.Now()
	req.Status = decision
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &now
	req.ReviewNotes = notes

	applied, err := s.requests.Review(ctx, req, decision == model.DischargeRequestApproved)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errors.Conflict("request was reviewed concurrently; re-fetch for the outcome")
	}

	s.publishEvent(ctx, model.EventDischargeReviewed, req)
	if decision == model.DischargeRequestApproved {
		s.publishEvent(ctx, model.EventPatientDischarged, map[string]interface{}{
			"patient_id": req.PatientID,
			"via":        "approved_request",
			"request_id": req.ID,
		})
	}
	s.auditor.Log(ctx, reviewerID, string(decision), "discharge_request", req.ID, req)
	s.metrics.DischargeReviews.WithLabelValues(string(decision)).Inc()

	return req, nil
}

func (s *Service) ListDischargeRequests(ctx context.Context, patientID *uuid.UUID) ([]*model.DischargeRequest, error) {
	return s.requests.List(ctx, patientID)
}

// publishEvent writes to the outbox after the data transition has
// committed. A failure here is logged and dropped; it never rolls the
// transition back.
func (s *Service) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{EventType: eventType, Payload: data}); err != nil {
		s.logger.Error(err, "failed to create outbox event", "event_type", eventType)
	}
}
