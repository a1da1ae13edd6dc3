package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `gorm:"size:255" json:"location"`
	StartsAt    time.Time      `gorm:"index" json:"starts_at"`
	EndsAt      time.Time      `json:"ends_at"`
	Spots       int            `gorm:"not null" json:"spots"`
	SpotsLeft   int            `gorm:"not null" json:"spots_left"`
	PriceAmount float64        `gorm:"default:0" json:"price_amount"` // 0 = free event
	Currency    string         `gorm:"size:3;default:'EUR'" json:"currency"`
	ImageURL    string         `gorm:"size:512" json:"image_url"`
	Published   bool           `gorm:"default:true;index" json:"published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Event) IsFree() bool { return e.PriceAmount == 0 }

func (e *Event) IsBookable(now time.Time) bool {
	return e.Published && e.SpotsLeft > 0 && now.Before(e.StartsAt)
}
