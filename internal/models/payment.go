package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is a row in the primary ledger, one per provider notification that
// survived webhook verification. OrderID is the provider-issued order id and
// the deduplication key across sources; PaymentID preserves whatever id the
// client reported at capture time (possibly the "unknown" placeholder).
type Payment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     string  `gorm:"size:255;uniqueIndex" json:"order_id"`
	PaymentID   string  `gorm:"size:255" json:"payment_id"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Currency    string  `gorm:"size:3;default:'EUR'" json:"currency"`
	Status      string  `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED, REFUNDED
	EventID     uint    `gorm:"index" json:"event_id"`
	UserID      uint    `gorm:"index" json:"user_id"`
	BookingID   *uint   `gorm:"index" json:"booking_id"`
	PayerEmail  string  `gorm:"size:255" json:"payer_email"`
	// FullDetails holds the raw provider capture payload as received.
	FullDetails string         `gorm:"type:text" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
