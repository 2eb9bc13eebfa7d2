package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/internal/types"
)

// MealHandler serves the meal log endpoints.
type MealHandler struct {
	meals *service.MealService
}

func NewMealHandler(meals *service.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

// List handles GET /api/meals, optionally filtered by from/to dates.
func (h *MealHandler) List(c *gin.Context) {
	userID := currentUserID(c)

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	var err error
	var meals interface{}
	if !from.IsZero() || !to.IsZero() {
		meals, err = h.meals.ListMealsByDateRange(c.Request.Context(), userID, from, to)
	} else {
		meals, err = h.meals.ListMeals(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list meals"})
		return
	}

	c.JSON(http.StatusOK, meals)
}

// Get handles GET /api/meals/:id.
func (h *MealHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	meal, err := h.meals.GetMeal(c.Request.Context(), currentUserID(c), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load meal"})
		return
	}

	c.JSON(http.StatusOK, meal)
}

// Create handles POST /api/meals.
func (h *MealHandler) Create(c *gin.Context) {
	var req types.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := h.meals.CreateMeal(c.Request.Context(), currentUserID(c), &req)
	if errors.Is(err, service.ErrInvalidMealType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal type"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create meal"})
		return
	}

	c.JSON(http.StatusCreated, meal)
}

// Update handles PATCH /api/meals/:id.
func (h *MealHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req types.UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := h.meals.UpdateMeal(c.Request.Context(), currentUserID(c), id, &req)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return
	case errors.Is(err, service.ErrInvalidMealType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal type"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update meal"})
		return
	}

	c.JSON(http.StatusOK, meal)
}

// Delete handles DELETE /api/meals/:id.
func (h *MealHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.meals.DeleteMeal(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete meal"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "meal deleted"})
}
