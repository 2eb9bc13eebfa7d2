package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/macrolog/backend/internal/models"
)

// Plan names used by the capability gate.
const (
	PlanTrial   = "trial"
	PlanPremium = "premium"
	PlanFree    = "free"
)

// planCapabilities is the static feature list per plan. CanAccess is a
// plain map lookup so plan changes take effect without restart.
var planCapabilities = map[string][]string{
	PlanTrial: {
		"meal-logging",
		"progress-tracking",
		"nutrition-goals",
		"ai-recommendations",
		"meal-suggestions",
		"nutritional-advice",
	},
	PlanPremium: {
		"meal-logging",
		"progress-tracking",
		"nutrition-goals",
		"ai-recommendations",
		"meal-suggestions",
		"nutritional-advice",
	},
	PlanFree: {
		"meal-logging",
		"progress-tracking",
	},
}

// TrialStatus is the payload of GET /api/trial-status.
type TrialStatus struct {
	TrialActive        bool   `json:"trial_active"`
	TrialDaysLeft      int    `json:"trial_days_left"`
	SubscriptionActive bool   `json:"subscription_active"`
	Plan               string `json:"plan"`
}

// TrialService computes trial state from the user's trial end date and a
// per-user subscription flag kept in Redis.
type TrialService struct {
	redis *redis.Client

	now func() time.Time
}

func NewTrialService(redisClient *redis.Client) *TrialService {
	return &TrialService{
		redis: redisClient,
		now:   time.Now,
	}
}

// DaysLeft returns the whole days remaining in the trial, clamped at zero.
// A partial day counts as a full one.
func (s *TrialService) DaysLeft(trialEnd time.Time) int {
	remaining := trialEnd.Sub(s.now())
	days := int(math.Ceil(remaining.Hours() / 24))
	if days < 0 {
		days = 0
	}
	return days
}

// Status resolves the user's current plan. An active subscription overrides
// the trial window entirely.
func (s *TrialService) Status(ctx context.Context, user *models.User) (*TrialStatus, error) {
	subscribed, err := s.SubscriptionActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	daysLeft := s.DaysLeft(user.TrialEndDate)
	status := &TrialStatus{
		TrialActive:        daysLeft > 0,
		TrialDaysLeft:      daysLeft,
		SubscriptionActive: subscribed,
	}

	switch {
	case subscribed:
		status.Plan = PlanPremium
	case status.TrialActive:
		status.Plan = PlanTrial
	default:
		status.Plan = PlanFree
	}
	return status, nil
}

// CanAccess reports whether the plan's static capability list contains the
// feature.
func CanAccess(plan, feature string) bool {
	for _, f := range planCapabilities[plan] {
		if f == feature {
			return true
		}
	}
	return false
}

// SubscriptionActive reads the per-user subscription flag.
func (s *TrialService) SubscriptionActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	val, err := s.redis.Get(ctx, subscriptionKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}

// ActivateSubscription marks the user as paid. The flag carries a TTL of one
// subscription period; renewal re-verifies payment and sets it again.
func (s *TrialService) ActivateSubscription(ctx context.Context, userID uuid.UUID) error {
	return s.redis.Set(ctx, subscriptionKey(userID), "1", 31*24*time.Hour).Err()
}

// DeactivateSubscription clears the paid flag.
func (s *TrialService) DeactivateSubscription(ctx context.Context, userID uuid.UUID) error {
	return s.redis.Del(ctx, subscriptionKey(userID)).Err()
}

func subscriptionKey(userID uuid.UUID) string {
	return fmt.Sprintf("subscription:active:%s", userID)
}
