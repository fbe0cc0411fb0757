package service

import (
	"context"
	"testing"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaServiceEnforcesMonthlyLimit(t *testing.T) {
	svc := NewQuotaService(newFakeUsageRepo(), 2)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.CheckAndIncrementUsage(ctx, userID, domain.FeatureInterview))
	require.NoError(t, svc.CheckAndIncrementUsage(ctx, userID, domain.FeatureInterview))
	assert.ErrorIs(t, svc.CheckAndIncrementUsage(ctx, userID, domain.FeatureInterview), ErrQuotaExceeded)

	quota, err := svc.GetUserQuota(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, &domain.UserQuota{MaxInterviews: 2, UsedInterviews: 2}, quota)
}

func TestQuotaServiceUnlimited(t *testing.T) {
	svc := NewQuotaService(newFakeUsageRepo(), 0)
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.CheckAndIncrementUsage(context.Background(), userID, domain.FeatureInterview))
	}
}

func TestQuotaServiceNoUsageYet(t *testing.T) {
	quota, err := NewQuotaService(newFakeUsageRepo(), 3).GetUserQuota(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, quota.UsedInterviews)
	assert.Equal(t, 3, quota.MaxInterviews)
}

func TestQuotaServiceRefundFreesSlot(t *testing.T) {
	usage := newFakeUsageRepo()
	svc := NewQuotaService(usage, 1)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.CheckAndIncrementUsage(ctx, userID, domain.FeatureInterview))
	require.NoError(t, svc.RefundUsage(ctx, userID, domain.FeatureInterview))
	assert.Equal(t, 0, usage.count(userID, domain.FeatureInterview))

	require.NoError(t, svc.CheckAndIncrementUsage(ctx, userID, domain.FeatureInterview))
	require.NoError(t, svc.RefundUsage(ctx, userID, domain.FeatureInterview))
	require.NoError(t, svc.RefundUsage(ctx, userID, domain.FeatureInterview))
	assert.Equal(t, 0, usage.count(userID, domain.FeatureInterview))
}
