package repository

import (
	"errors"

	"photohunt/internal/domain"
	"photohunt/internal/models"

	"gorm.io/gorm"
)

var ErrEventFull = errors.New("event has no spots left")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithSpot inserts the booking and decrements the event's spot counter
// in one transaction so concurrent bookings cannot oversell an event.
func (r *BookingRepository) CreateWithSpot(b *models.Booking) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).
			Where("id = ? AND spots_left > 0", b.EventID).
			UpdateColumn("spots_left", gorm.Expr("spots_left - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEventFull
		}
		return tx.Create(b).Error
	})
}

// CancelWithSpot marks the booking cancelled and returns its spot.
func (r *BookingRepository) CancelWithSpot(b *models.Booking) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		b.Status = domain.BookingStatusCancelled
		if err := tx.Save(b).Error; err != nil {
			return err
		}
		return tx.Model(&models.Event{}).
			Where("id = ? AND spots_left < spots", b.EventID).
			UpdateColumn("spots_left", gorm.Expr("spots_left + 1")).Error
	})
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Update(b *models.Booking) error {
	return r.db.Save(b).Error
}

func (r *BookingRepository) ListByUser(userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// FirstByUser returns the user's earliest booking; admin views read the
// contact phone from it.
func (r *BookingRepository) FirstByUser(userID uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListWithPaymentData returns bookings carrying legacy embedded payment
// blobs, optionally scoped to one event. These feed the reconciler.
func (r *BookingRepository) ListWithPaymentData(eventID uint) ([]models.Booking, error) {
	q := r.db.Where("payment IS NOT NULL AND payment <> ''")
	if eventID != 0 {
		q = q.Where("event_id = ?", eventID)
	}
	var bookings []models.Booking
	err := q.Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) ListEventIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Booking{}).
		Where("user_id = ? AND status <> ?", userID, domain.BookingStatusCancelled).
		Pluck("event_id", &ids).Error
	return ids, err
}

func (r *BookingRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Booking{}).Count(&n).Error
	return n, err
}
