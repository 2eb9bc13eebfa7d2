package database

import (
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/models"
)

// AutoMigrate creates or updates the schema for every persisted entity.
// SQL migrations under migrations/ are authoritative for production
// deployments (see cmd/migrate); auto-migration covers development and the
// sqlite test database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Meal{},
		&models.NutritionGoal{},
		&models.ProgressEntry{},
		&models.RegistrationLog{},
		&models.UserNotification{},
		&models.UserGracePeriod{},
	)
}
