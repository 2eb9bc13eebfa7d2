package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/types"
)

// ProgressService handles weigh-in entries.
type ProgressService struct {
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

func (s *ProgressService) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListEntriesByDateRange filters on entry date. A zero bound is open.
func (s *ProgressService) ListEntriesByDateRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ProgressEntry, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}

	var entries []models.ProgressEntry
	if err := query.Order("date DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *ProgressService) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	if err := s.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *ProgressService) CreateEntry(ctx context.Context, userID uuid.UUID, req *types.CreateProgressRequest) (*models.ProgressEntry, error) {
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	entry := models.ProgressEntry{
		UserID: userID,
		Date:   date,
		Weight: req.Weight,
		Notes:  req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *ProgressService) UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, req *types.UpdateProgressRequest) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	if err := s.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
		return nil, err
	}

	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.Weight != nil {
		entry.Weight = *req.Weight
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetPhotoURL attaches an uploaded photo to an entry.
func (s *ProgressService) SetPhotoURL(ctx context.Context, userID, entryID uuid.UUID, url string) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	if err := s.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
		return nil, err
	}

	entry.PhotoURL = url
	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry, reporting whether a row existed.
func (s *ProgressService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Delete(&models.ProgressEntry{}, "id = ? AND user_id = ?", entryID, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
