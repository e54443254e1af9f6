package services

import (
	"project-management-api/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ActivityRecorder appends audit records after successful mutations.
// Writes are best-effort: a failed append is logged and dropped, it
// never affects the outcome of the mutation it describes.
type ActivityRecorder struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewActivityRecorder constructs an ActivityRecorder.
func NewActivityRecorder(db *gorm.DB, log *logrus.Logger) *ActivityRecorder {
	return &ActivityRecorder{db: db, log: log}
}

// Record appends one activity log row.
func (r *ActivityRecorder) Record(userID uint, action, resourceType string, resourceID uint, description string) {
	entry := models.ActivityLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		r.log.WithFields(logrus.Fields{
			"operation": "activity.Record",
			"action":    action,
			"user_id":   userID,
		}).WithError(err).Warn("failed to append activity log")
	}
}

// ForUser returns the activity trail for a user, newest first.
func (r *ActivityRecorder) ForUser(userID uint, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.ActivityLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
