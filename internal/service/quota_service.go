package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/google/uuid"
)

var ErrQuotaExceeded = errors.New("monthly interview quota exceeded")

type quotaService struct {
	usageRepo domain.UsageRepository
	limits    map[domain.FeatureType]int
	now       func() time.Time
}

// NewQuotaService limits interview starts per calendar month; zero means unlimited.
func NewQuotaService(usageRepo domain.UsageRepository, monthlyInterviewLimit int) domain.QuotaService {
	return &quotaService{
		usageRepo: usageRepo,
		limits: map[domain.FeatureType]int{
			domain.FeatureInterview: monthlyInterviewLimit,
		},
		now: time.Now,
	}
}

func (s *quotaService) CheckAndIncrementUsage(ctx context.Context, userID uuid.UUID, feature domain.FeatureType) error {
	usage, err := s.usageRepo.FindOrCreate(ctx, userID, feature, domain.PeriodStart(s.now()))
	if err != nil {
		return err
	}

	ok, err := s.usageRepo.IncrementWithinLimit(ctx, usage.ID, s.limits[feature])
	if err != nil {
		return err
	}
	if !ok {
		return ErrQuotaExceeded
	}
	return nil
}

// RefundUsage returns a unit charged for an attempt that did not go through.
func (s *quotaService) RefundUsage(ctx context.Context, userID uuid.UUID, feature domain.FeatureType) error {
	usage, err := s.usageRepo.FindOrCreate(ctx, userID, feature, domain.PeriodStart(s.now()))
	if err != nil {
		return err
	}
	return s.usageRepo.Decrement(ctx, usage.ID)
}

func (s *quotaService) GetUserQuota(ctx context.Context, userID uuid.UUID) (*domain.UserQuota, error) {
	quota := &domain.UserQuota{
		MaxInterviews: s.limits[domain.FeatureInterview],
	}

	usage, err := s.usageRepo.GetCurrentMonthUsage(ctx, userID, domain.FeatureInterview)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quota, nil
		}
		return nil, err
	}
	quota.UsedInterviews = usage.Count
	return quota, nil
}
