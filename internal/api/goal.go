package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/internal/types"
)

// GoalHandler serves the nutrition goal endpoints.
type GoalHandler struct {
	goals *service.GoalService
}

func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// List handles GET /api/nutrition-goals.
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.goals.ListGoals(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list goals"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

// Active handles GET /api/nutrition-goals/active.
func (h *GoalHandler) Active(c *gin.Context) {
	goal, err := h.goals.GetActiveGoal(c.Request.Context(), currentUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active goal"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load active goal"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Get handles GET /api/nutrition-goals/:id.
func (h *GoalHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	goal, err := h.goals.GetGoal(c.Request.Context(), currentUserID(c), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load goal"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Create handles POST /api/nutrition-goals.
func (h *GoalHandler) Create(c *gin.Context) {
	var req types.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goals.CreateGoal(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create goal"})
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// Update handles PATCH /api/nutrition-goals/:id.
func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req types.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goals.UpdateGoal(c.Request.Context(), currentUserID(c), id, &req)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update goal"})
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Delete handles DELETE /api/nutrition-goals/:id.
func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.goals.DeleteGoal(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete goal"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "goal deleted"})
}
