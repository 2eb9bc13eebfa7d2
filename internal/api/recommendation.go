package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/internal/types"
)

// recentMealWindow bounds how much meal history goes into prompts.
const recentMealWindow = 14 * 24 * time.Hour

// RecommendationHandler serves the AI-backed endpoints. Each request is
// gated on the caller's plan capabilities before any model call is made.
type RecommendationHandler struct {
	recs     *service.RecommendationService
	auth     *service.AuthService
	trial    *service.TrialService
	profiles *service.ProfileService
	goals    *service.GoalService
	meals    *service.MealService
}

func NewRecommendationHandler(
	recs *service.RecommendationService,
	auth *service.AuthService,
	trial *service.TrialService,
	profiles *service.ProfileService,
	goals *service.GoalService,
	meals *service.MealService,
) *RecommendationHandler {
	return &RecommendationHandler{
		recs:     recs,
		auth:     auth,
		trial:    trial,
		profiles: profiles,
		goals:    goals,
		meals:    meals,
	}
}

// requireFeature checks the caller's plan against the feature and writes the
// error response itself when access is denied. The admin pseudo-user passes
// every check.
func (h *RecommendationHandler) requireFeature(c *gin.Context, feature string) bool {
	userID := currentUserID(c)
	if userID == service.AdminUserID {
		return true
	}

	user, err := h.auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return false
	}

	status, err := h.trial.Status(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check subscription"})
		return false
	}

	if !service.CanAccess(status.Plan, feature) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "your trial has ended, subscribe to keep using AI features",
			"plan":  status.Plan,
		})
		return false
	}
	return true
}

// promptContext loads the profile, active goal and recent meals that feed
// the prompts. A missing active goal is not an error, the prompt says so.
func (h *RecommendationHandler) promptContext(c *gin.Context, withMeals bool) (*models.UserProfile, *models.NutritionGoal, []models.Meal, bool) {
	userID := currentUserID(c)

	profile, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "complete your profile first"})
		return nil, nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return nil, nil, nil, false
	}

	goal, err := h.goals.GetActiveGoal(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load active goal"})
		return nil, nil, nil, false
	}

	var meals []models.Meal
	if withMeals {
		now := time.Now()
		meals, err = h.meals.ListMealsByDateRange(c.Request.Context(), userID, now.Add(-recentMealWindow), now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load meals"})
			return nil, nil, nil, false
		}
	}

	return profile, goal, meals, true
}

// GoalRecommendations handles GET /api/recommendations/nutrition-goals.
// When the model does not answer in time the static fallback is served
// with a 200, the frontend treats it like any other payload.
func (h *RecommendationHandler) GoalRecommendations(c *gin.Context) {
	if !h.requireFeature(c, "ai-recommendations") {
		return
	}

	profile, goal, meals, ok := h.promptContext(c, true)
	if !ok {
		return
	}

	recs, err := h.recs.GoalRecommendations(c.Request.Context(), currentUserID(c), profile, goal, meals)
	if err != nil {
		log.Printf("goal recommendations failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// MealSuggestions handles GET /api/recommendations/meals.
func (h *RecommendationHandler) MealSuggestions(c *gin.Context) {
	h.serveMealSuggestions(c, h.recs.OpenAIMealSuggestions)
}

// PerplexityMealSuggestions handles GET /api/perplexity/meal-suggestions.
func (h *RecommendationHandler) PerplexityMealSuggestions(c *gin.Context) {
	h.serveMealSuggestions(c, h.recs.PerplexityMealSuggestions)
}

func (h *RecommendationHandler) serveMealSuggestions(c *gin.Context, suggest func(ctx context.Context, profile *models.UserProfile, goal *models.NutritionGoal) ([]service.MealSuggestion, error)) {
	if !h.requireFeature(c, "meal-suggestions") {
		return
	}

	profile, goal, _, ok := h.promptContext(c, false)
	if !ok {
		return
	}

	suggestions, err := suggest(c.Request.Context(), profile, goal)
	if errors.Is(err, service.ErrRecommendationTimeout) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "suggestion service timed out, try again"})
		return
	}
	if err != nil {
		log.Printf("meal suggestions failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate suggestions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Chat handles POST /api/ai-chat.
func (h *RecommendationHandler) Chat(c *gin.Context) {
	if !h.requireFeature(c, "ai-recommendations") {
		return
	}

	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.recs.Chat(c.Request.Context(), req.Message)
	if errors.Is(err, service.ErrRecommendationTimeout) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "assistant timed out, try again"})
		return
	}
	if err != nil {
		log.Printf("ai chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get a response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// NutritionalAdvice handles POST /api/perplexity/nutritional-advice.
func (h *RecommendationHandler) NutritionalAdvice(c *gin.Context) {
	if !h.requireFeature(c, "nutritional-advice") {
		return
	}

	var req types.AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, _, _, ok := h.promptContext(c, false)
	if !ok {
		return
	}

	advice, err := h.recs.NutritionalAdvice(c.Request.Context(), profile, req.Question)
	if errors.Is(err, service.ErrRecommendationTimeout) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "advice service timed out, try again"})
		return
	}
	if err != nil {
		log.Printf("nutritional advice failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get advice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"advice": advice})
}
