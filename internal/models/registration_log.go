package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationLog is an append-only audit row written for every registration
// attempt, keyed by email and IP so repeated signups can be throttled.
type RegistrationLog struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	IP           string    `gorm:"size:45;index" json:"ip"`
	UserAgent    string    `gorm:"size:512" json:"user_agent"`
	Email        string    `gorm:"size:255;index" json:"email"`
	Username     string    `gorm:"size:50" json:"username"`
	TrialEndDate time.Time `json:"trial_end_date"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (l *RegistrationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
