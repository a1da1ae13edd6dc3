package repository

import (
	"errors"
	"strings"
	"time"

	"photohunt/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateEvent marks a webhook delivery already recorded for this
// provider event id; the caller acknowledges it without reprocessing.
var ErrDuplicateEvent = errors.New("webhook event already recorded")

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Record inserts the event, relying on the unique (provider, event id) index
// for idempotency. A duplicate delivery returns ErrDuplicateEvent.
func (r *WebhookEventRepository) Record(e *models.WebhookEvent) error {
	err := r.db.Create(e).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
		return ErrDuplicateEvent
	}
	return err
}

func (r *WebhookEventRepository) MarkProcessed(e *models.WebhookEvent, processingErr string) error {
	now := time.Now()
	e.ProcessedAt = &now
	e.ProcessingError = processingErr
	return r.db.Save(e).Error
}

func (r *WebhookEventRepository) List(limit int) ([]models.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.WebhookEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
