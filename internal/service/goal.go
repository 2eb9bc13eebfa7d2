package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/types"
)

// GoalService handles nutrition goal CRUD. At most one goal per user is
// active at a time: activating a goal deactivates the others in the same
// transaction.
type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

func (s *GoalService) ListGoals(ctx context.Context, userID uuid.UUID) ([]models.NutritionGoal, error) {
	var goals []models.NutritionGoal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// GetActiveGoal returns the user's active goal. Ordering by updated_at makes
// the result deterministic if legacy rows left more than one flagged active.
func (s *GoalService) GetActiveGoal(ctx context.Context, userID uuid.UUID) (*models.NutritionGoal, error) {
	var goal models.NutritionGoal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		First(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, goalID uuid.UUID) (*models.NutritionGoal, error) {
	var goal models.NutritionGoal
	if err := s.db.WithContext(ctx).
		First(&goal, "id = ? AND user_id = ?", goalID, userID).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) CreateGoal(ctx context.Context, userID uuid.UUID, req *types.CreateGoalRequest) (*models.NutritionGoal, error) {
	goal := models.NutritionGoal{
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		CalorieTarget: req.CalorieTarget,
		ProteinTarget: req.ProteinTarget,
		CarbTarget:    req.CarbTarget,
		FatTarget:     req.FatTarget,
		IsActive:      req.IsActive,
	}
	if req.StartDate != nil {
		goal.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		goal.EndDate = *req.EndDate
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if goal.IsActive {
			if err := tx.Model(&models.NutritionGoal{}).
				Where("user_id = ? AND is_active = ?", userID, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&goal).Error
	})
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uuid.UUID, req *types.UpdateGoalRequest) (*models.NutritionGoal, error) {
	var goal models.NutritionGoal
	if err := s.db.WithContext(ctx).
		First(&goal, "id = ? AND user_id = ?", goalID, userID).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.CalorieTarget != nil {
		goal.CalorieTarget = *req.CalorieTarget
	}
	if req.ProteinTarget != nil {
		goal.ProteinTarget = *req.ProteinTarget
	}
	if req.CarbTarget != nil {
		goal.CarbTarget = *req.CarbTarget
	}
	if req.FatTarget != nil {
		goal.FatTarget = *req.FatTarget
	}
	if req.StartDate != nil {
		goal.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		goal.EndDate = *req.EndDate
	}

	activating := req.IsActive != nil && *req.IsActive && !goal.IsActive
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if activating {
			if err := tx.Model(&models.NutritionGoal{}).
				Where("user_id = ? AND is_active = ? AND id <> ?", userID, true, goal.ID).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&goal).Error
	})
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// DeleteGoal removes a goal, reporting whether a row existed.
func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Delete(&models.NutritionGoal{}, "id = ? AND user_id = ?", goalID, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
