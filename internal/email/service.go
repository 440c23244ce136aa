package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
)

type Service interface {
	SendDischargeRequested(ctx context.Context, to, patientName, requesterName string) error
	SendDischargeReviewed(ctx context.Context, to, patientName, decision string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPService(cfg Config, logger *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) SendDischargeRequested(ctx context.Context, to, patientName, requesterName string) error {
	subject := "Discharge request awaiting review"
	body := fmt.Sprintf("%s has requested discharge for %s. Please review the request in the practice dashboard.", requesterName, patientName)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendDischargeReviewed(ctx context.Context, to, patientName, decision string) error {
	subject := fmt.Sprintf("Discharge request %s", decision)
	body := fmt.Sprintf("The discharge request for %s was %s.", patientName, decision)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// NoopService is used when SMTP is not configured; sends are logged and
// dropped.
type NoopService struct {
	Logger *logger.Logger
}

func (s *NoopService) SendDischargeRequested(_ context.Context, to, patientName, _ string) error {
	s.Logger.Debug("email disabled, skipping discharge-requested mail", "to", to, "patient", patientName)
	return nil
}

func (s *NoopService) SendDischargeReviewed(_ context.Context, to, patientName, _ string) error {
	s.Logger.Debug("email disabled, skipping discharge-reviewed mail", "to", to, "patient", patientName)
	return nil
}

func (s *NoopService) SendCustom(_ context.Context, to, subject, _ string) error {
	s.Logger.Debug("email disabled, skipping mail", "to", to, "subject", subject)
	return nil
}
