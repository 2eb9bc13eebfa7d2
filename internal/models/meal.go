package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Valid meal types. Used for input validation in the meal handlers.
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// Meal is a single logged food entry. Macro fields are whole units
// (kcal and grams); fractional input is rounded on create.
type Meal struct {
	ID         uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Calories   int            `gorm:"not null" json:"calories"`
	Proteins   int            `gorm:"not null" json:"proteins"`
	Carbs      int            `gorm:"not null" json:"carbs"`
	Fats       int            `gorm:"not null" json:"fats"`
	MealType   string         `gorm:"size:20;not null" json:"meal_type"`
	ConsumedAt time.Time      `gorm:"not null;index" json:"consumed_at"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ValidMealType reports whether t is one of the known meal type values.
func ValidMealType(t string) bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}
