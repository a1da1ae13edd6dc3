package repository

import (
	"photohunt/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *AuditLogRepository) List(action string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.Order("created_at DESC").Limit(limit)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var entries []models.AuditLog
	err := q.Find(&entries).Error
	return entries, err
}
