package repository

import (
	"photohunt/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

// List returns ledger rows, optionally scoped to one event. These feed the
// reconciler together with the legacy booking records.
func (r *PaymentRepository) List(eventID uint) ([]models.Payment, error) {
	q := r.db.Model(&models.Payment{})
	if eventID != 0 {
		q = q.Where("event_id = ?", eventID)
	}
	var payments []models.Payment
	err := q.Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Payment{}).Count(&n).Error
	return n, err
}
