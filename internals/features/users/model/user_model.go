package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel is a staff account for the admin dashboard. Visitors never get
// accounts; the kiosk is anonymous.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserName  string    `gorm:"size:50;not null" json:"user_name" validate:"required,min=3,max=50"`
	Email     string    `gorm:"size:255;unique;not null" json:"email" validate:"required,email"`
	Password  string    `gorm:"not null" json:"-"`
	GoogleID  *string   `gorm:"size:255;unique" json:"google_id,omitempty"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}
