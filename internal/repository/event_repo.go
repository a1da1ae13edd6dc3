package repository

import (
	"photohunt/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(e *models.Event) error {
	return r.db.Create(e).Error
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var e models.Event
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) ListPublished() ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("published = ?", true).Order("starts_at ASC").Find(&events).Error
	return events, err
}

func (r *EventRepository) ListAll() ([]models.Event, error) {
	var events []models.Event
	err := r.db.Order("starts_at DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(e *models.Event) error {
	return r.db.Save(e).Error
}

func (r *EventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

func (r *EventRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Event{}).Count(&n).Error
	return n, err
}
