package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/internal/types"
)

// maxPhotoSize caps progress photo uploads at 10 MB.
const maxPhotoSize = 10 << 20

// ProgressHandler serves weigh-in tracking and progress photos.
type ProgressHandler struct {
	progress *service.ProgressService
	photos   *service.PhotoService
}

func NewProgressHandler(progress *service.ProgressService, photos *service.PhotoService) *ProgressHandler {
	return &ProgressHandler{progress: progress, photos: photos}
}

// List handles GET /api/progress, optionally filtered by from/to dates.
func (h *ProgressHandler) List(c *gin.Context) {
	userID := currentUserID(c)

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	var err error
	var entries interface{}
	if !from.IsZero() || !to.IsZero() {
		entries, err = h.progress.ListEntriesByDateRange(c.Request.Context(), userID, from, to)
	} else {
		entries, err = h.progress.ListEntries(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list progress entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Get handles GET /api/progress/:id.
func (h *ProgressHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.progress.GetEntry(c.Request.Context(), currentUserID(c), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "progress entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load progress entry"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Create handles POST /api/progress.
func (h *ProgressHandler) Create(c *gin.Context) {
	var req types.CreateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progress.CreateEntry(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create progress entry"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Update handles PATCH /api/progress/:id.
func (h *ProgressHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req types.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progress.UpdateEntry(c.Request.Context(), currentUserID(c), id, &req)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "progress entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update progress entry"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// UploadPhoto handles POST /api/progress/:id/photo.
func (h *ProgressHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)

	if _, err := h.progress.GetEntry(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "progress entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load progress entry"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize)
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	url, err := h.photos.UploadProgressPhoto(c.Request.Context(), userID, id, file, header)
	if err != nil {
		log.Printf("photo upload failed for entry %s: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progress.SetPhotoURL(c.Request.Context(), userID, id, url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save photo"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Delete handles DELETE /api/progress/:id.
func (h *ProgressHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.progress.DeleteEntry(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete progress entry"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "progress entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "progress entry deleted"})
}
