package types

import (
	"time"

	"github.com/google/uuid"
)

// Admin is the privileged-accounts table. Membership alone (keyed by the
// user id) is what elevates a session; there is no separate admin login.
type Admin struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ID;references:ID" json:"-"`
	Email     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	LastLogin *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Admin) TableName() string {
	return "admin"
}
