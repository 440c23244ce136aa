package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/email"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/notification"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/messaging"
)

// Notifier consumes discharge events from the broker and turns them into
// in-app notifications and review-outcome emails. It subscribes to the
// channels the outbox processor publishes to.
type Notifier struct {
	broker        messaging.Broker
	notifications notification.NotificationService
	emails        email.Service
	staff         repository.StaffRepository
	patients      repository.PatientRepository
	logger        *logger.Logger
}

func NewNotifier(
	broker messaging.Broker,
	notifications notification.NotificationService,
	emails email.Service,
	staff repository.StaffRepository,
	patients repository.PatientRepository,
	logger *logger.Logger,
) *Notifier {
	return &Notifier{
		broker:        broker,
		notifications: notifications,
		emails:        emails,
		staff:         staff,
		patients:      patients,
		logger:        logger,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	channels := map[string]func(context.Context, []byte) error{
		model.EventDischargeRequested: n.handleDischargeRequested,
		model.EventDischargeReviewed:  n.handleDischargeReviewed,
		model.EventPatientDischarged:  n.handlePatientDischarged,
	}

	for channel, handle := range channels {
		msgs, err := n.broker.Subscribe(ctx, channel)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		go n.consume(ctx, channel, msgs, handle)
	}

	<-ctx.Done()
	return nil
}

func (n *Notifier) consume(ctx context.Context, channel string, msgs <-chan []byte, handle func(context.Context, []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := handle(ctx, msg); err != nil {
				n.logger.Error(err, "failed to handle event", "channel", channel)
			}
		}
	}
}

func (n *Notifier) handleDischargeRequested(ctx context.Context, payload []byte) error {
	var req model.DischargeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to decode discharge request event: %w", err)
	}

	patientName, _ := n.patientName(ctx, req.PatientID)
	title := "Discharge request awaiting review"
	body := fmt.Sprintf("A discharge request for %s is pending: %s", patientName, req.Reason)

	if err := n.notifications.FanOutToRole(ctx, model.RoleSupervisor, model.NotificationDischargeRequested, title, body, &req.PatientID); err != nil {
		return err
	}

	reviewers, err := n.staff.ListByRole(ctx, model.RoleSupervisor)
	if err != nil {
		return err
	}
	requester, err := n.staff.Get(ctx, req.RequestedBy)
	if err != nil {
		return err
	}
	for _, r := range reviewers {
		if r.ID == req.RequestedBy {
			continue
		}
		if err := n.emails.SendDischargeRequested(ctx, r.Email, patientName, requester.FirstName+" "+requester.LastName); err != nil {
			n.logger.Error(err, "failed to email reviewer", "staff_id", r.ID.String())
		}
	}
	return nil
}

func (n *Notifier) handleDischargeReviewed(ctx context.Context, payload []byte) error {
	var req model.DischargeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to decode discharge review event: %w", err)
	}

	patientName, _ := n.patientName(ctx, req.PatientID)
	title := fmt.Sprintf("Discharge request %s", req.Status)
	body := fmt.Sprintf("The discharge request for %s was %s.", patientName, req.Status)

	if err := n.notifications.NotifyStaff(ctx, req.RequestedBy, model.NotificationDischargeReviewed, title, body, &req.PatientID); err != nil {
		return err
	}

	requester, err := n.staff.Get(ctx, req.RequestedBy)
	if err != nil {
		return err
	}
	return n.emails.SendDischargeReviewed(ctx, requester.Email, patientName, string(req.Status))
}

func (n *Notifier) handlePatientDischarged(ctx context.Context, payload []byte) error {
	var evt struct {
		PatientID uuid.UUID `json:"patient_id"`
		Via       string    `json:"via"`
	}
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to decode discharge event: %w", err)
	}

	patientName, _ := n.patientName(ctx, evt.PatientID)
	title := "Patient discharged"
	body := fmt.Sprintf("%s has been discharged (%s).", patientName, evt.Via)

	return n.notifications.FanOutToRole(ctx, model.RoleClinician, model.NotificationPatientDischarged, title, body, &evt.PatientID)
}

func (n *Notifier) patientName(ctx context.Context, id uuid.UUID) (string, error) {
	patient, err := n.patients.Get(ctx, id)
	if err != nil {
		return "a patient", err
	}
	return patient.FirstName + " " + patient.LastName, nil
}
