package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NutritionGoal holds a user's calorie and macro targets over a date range.
// Several goals may exist per user; by convention at most one is active.
// Uniqueness of is_active is enforced in the goal service, not the schema.
type NutritionGoal struct {
	ID            uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	CalorieTarget int            `gorm:"not null" json:"calorie_target"`
	ProteinTarget int            `json:"protein_target"`
	CarbTarget    int            `json:"carb_target"`
	FatTarget     int            `json:"fat_target"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	IsActive      bool           `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (g *NutritionGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
