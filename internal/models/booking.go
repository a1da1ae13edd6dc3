package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking links a user to an event. Bookings created before the dedicated
// payments ledger existed carry their payment data inline in PaymentJSON /
// PaymentDetailsJSON; the reconciler folds those legacy shapes into the
// merged payments view.
type Booking struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	EventID      uint           `gorm:"not null;index" json:"event_id"`
	Status       string         `gorm:"size:20;not null;index" json:"status"` // PENDING_PAYMENT, CONFIRMED, CANCELLED
	ContactEmail string         `gorm:"size:255" json:"contact_email"`
	ContactPhone string         `gorm:"size:32" json:"contact_phone"`
	Participants int            `gorm:"default:1" json:"participants"`
	Notes        string         `gorm:"type:text" json:"notes"`
	// Legacy embedded payment data (loose JSON imported from the old store).
	PaymentJSON        string `gorm:"column:payment;type:text" json:"-"`
	PaymentDetailsJSON string `gorm:"column:payment_details;type:text" json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}
