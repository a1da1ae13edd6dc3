package models

import (
	"time"

	"photohunt/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash      string         `gorm:"size:255" json:"-"`
	Role              string         `gorm:"size:20;not null;index" json:"role"` // CLIENT | ADMIN
	Name              string         `gorm:"size:100" json:"name"`
	Surname           string         `gorm:"size:100" json:"surname"`
	BirthDate         *time.Time     `json:"birth_date"`
	TaxID             string         `gorm:"size:32" json:"tax_id"`
	Address           string         `gorm:"size:255" json:"address"`
	Instagram         string         `gorm:"size:100" json:"instagram"`
	GoogleID          *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL         string         `gorm:"size:512" json:"avatar_url"`
	MembershipYears   string         `gorm:"type:text" json:"membership_years"` // JSON array of years
	CurrentYearMember bool           `gorm:"default:false" json:"current_year_member"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// FullName joins name and surname, falling back to whichever is set.
func (u *User) FullName() string {
	switch {
	case u.Name != "" && u.Surname != "":
		return u.Name + " " + u.Surname
	case u.Name != "":
		return u.Name
	default:
		return u.Surname
	}
}
