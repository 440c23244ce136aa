package report

import (
	"context"
	"time"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

type ReportService interface {
	Summary(ctx context.Context, start, end time.Time) (*model.OperationalSummary, error)
}

type Service struct {
	repo repository.ReportRepository
}

func NewService(repo repository.ReportRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Summary(ctx context.Context, start, end time.Time) (*model.OperationalSummary, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, -1, 0)
	}
	if end.Before(start) {
		return nil, errors.BadRequest("period end must not precede period start", nil)
	}
	return s.repo.Summary(ctx, start, end)
}
