package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/service"
)

// TrialHandler serves GET /api/trial-status.
type TrialHandler struct {
	auth  *service.AuthService
	trial *service.TrialService
}

func NewTrialHandler(auth *service.AuthService, trial *service.TrialService) *TrialHandler {
	return &TrialHandler{auth: auth, trial: trial}
}

// Status handles GET /api/trial-status.
func (h *TrialHandler) Status(c *gin.Context) {
	userID := currentUserID(c)

	if userID == service.AdminUserID {
		c.JSON(http.StatusOK, service.TrialStatus{
			TrialActive:        false,
			TrialDaysLeft:      0,
			SubscriptionActive: true,
			Plan:               service.PlanPremium,
		})
		return
	}

	user, err := h.auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	status, err := h.trial.Status(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check trial status"})
		return
	}

	c.JSON(http.StatusOK, status)
}
