package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/testhelpers"
)

func TestDaysLeft(t *testing.T) {
	client, _ := testhelpers.NewTestRedis(t)
	svc := NewTrialService(client)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	tests := []struct {
		name     string
		trialEnd time.Time
		want     int
	}{
		{"full five days", now.Add(5 * 24 * time.Hour), 5},
		{"partial day rounds up", now.Add(24*time.Hour + time.Minute), 2},
		{"under a day counts as one", now.Add(30 * time.Minute), 1},
		{"exactly now", now, 0},
		{"expired", now.Add(-48 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.DaysLeft(tt.trialEnd))
		})
	}
}

func TestTrialStatus(t *testing.T) {
	client, _ := testhelpers.NewTestRedis(t)
	svc := NewTrialService(client)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), TrialEndDate: now.Add(3 * 24 * time.Hour)}

	status, err := svc.Status(ctx, user)
	require.NoError(t, err)
	assert.True(t, status.TrialActive)
	assert.Equal(t, 3, status.TrialDaysLeft)
	assert.False(t, status.SubscriptionActive)
	assert.Equal(t, PlanTrial, status.Plan)

	// Expired trial without a subscription drops to the free plan
	user.TrialEndDate = now.Add(-time.Hour)
	status, err = svc.Status(ctx, user)
	require.NoError(t, err)
	assert.False(t, status.TrialActive)
	assert.Equal(t, 0, status.TrialDaysLeft)
	assert.Equal(t, PlanFree, status.Plan)

	// An active subscription overrides the trial window entirely
	require.NoError(t, svc.ActivateSubscription(ctx, user.ID))
	status, err = svc.Status(ctx, user)
	require.NoError(t, err)
	assert.True(t, status.SubscriptionActive)
	assert.Equal(t, PlanPremium, status.Plan)

	require.NoError(t, svc.DeactivateSubscription(ctx, user.ID))
	status, err = svc.Status(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, PlanFree, status.Plan)
}

func TestSubscriptionFlagExpires(t *testing.T) {
	client, mr := testhelpers.NewTestRedis(t)
	svc := NewTrialService(client)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.ActivateSubscription(ctx, userID))

	active, err := svc.SubscriptionActive(ctx, userID)
	require.NoError(t, err)
	assert.True(t, active)

	// The flag carries a TTL of one subscription period
	mr.FastForward(32 * 24 * time.Hour)

	active, err = svc.SubscriptionActive(ctx, userID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(PlanTrial, "ai-recommendations"))
	assert.True(t, CanAccess(PlanPremium, "ai-recommendations"))
	assert.False(t, CanAccess(PlanFree, "ai-recommendations"))

	assert.True(t, CanAccess(PlanFree, "meal-logging"))
	assert.True(t, CanAccess(PlanFree, "progress-tracking"))
	assert.False(t, CanAccess(PlanFree, "meal-suggestions"))
	assert.False(t, CanAccess(PlanFree, "nutritional-advice"))

	assert.False(t, CanAccess("unknown-plan", "meal-logging"))
	assert.False(t, CanAccess(PlanPremium, "unknown-feature"))
}
