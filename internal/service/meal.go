package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/types"
)

var ErrInvalidMealType = errors.New("invalid meal type")

// MealService handles meal CRUD. Meals are never updated wholesale by the
// client flow, but PATCH is supported for corrections.
type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

func (s *MealService) ListMeals(ctx context.Context, userID uuid.UUID) ([]models.Meal, error) {
	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("consumed_at DESC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// ListMealsByDateRange filters on consumed_at. A zero bound is open.
func (s *MealService) ListMealsByDateRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Meal, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("consumed_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("consumed_at <= ?", to)
	}

	var meals []models.Meal
	if err := query.Order("consumed_at DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (s *MealService) GetMeal(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).
		First(&meal, "id = ? AND user_id = ?", mealID, userID).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// CreateMeal validates and inserts a meal. Fractional macros are rounded to
// the nearest whole unit.
func (s *MealService) CreateMeal(ctx context.Context, userID uuid.UUID, req *types.CreateMealRequest) (*models.Meal, error) {
	if !models.ValidMealType(req.MealType) {
		return nil, ErrInvalidMealType
	}

	consumedAt := time.Now()
	if req.ConsumedAt != nil {
		consumedAt = *req.ConsumedAt
	}

	meal := models.Meal{
		UserID:     userID,
		Name:       req.Name,
		Calories:   int(math.Round(req.Calories)),
		Proteins:   int(math.Round(req.Proteins)),
		Carbs:      int(math.Round(req.Carbs)),
		Fats:       int(math.Round(req.Fats)),
		MealType:   req.MealType,
		ConsumedAt: consumedAt,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *MealService) UpdateMeal(ctx context.Context, userID, mealID uuid.UUID, req *types.UpdateMealRequest) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).
		First(&meal, "id = ? AND user_id = ?", mealID, userID).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		meal.Name = *req.Name
	}
	if req.Calories != nil {
		meal.Calories = int(math.Round(*req.Calories))
	}
	if req.Proteins != nil {
		meal.Proteins = int(math.Round(*req.Proteins))
	}
	if req.Carbs != nil {
		meal.Carbs = int(math.Round(*req.Carbs))
	}
	if req.Fats != nil {
		meal.Fats = int(math.Round(*req.Fats))
	}
	if req.MealType != nil {
		if !models.ValidMealType(*req.MealType) {
			return nil, ErrInvalidMealType
		}
		meal.MealType = *req.MealType
	}
	if req.ConsumedAt != nil {
		meal.ConsumedAt = *req.ConsumedAt
	}

	if err := s.db.WithContext(ctx).Save(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal removes a meal, reporting whether a row existed.
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Delete(&models.Meal{}, "id = ? AND user_id = ?", mealID, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
