package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ApplicationStatusPending  = "en cours"
	ApplicationStatusRejected = "rejetée"
	ApplicationStatusAccepted = "validée"
)

type Application struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OpportunityID      uuid.UUID      `gorm:"type:uuid;index;not null;column:opportunity_id" json:"opportunity_id"`
	Opportunity        *Opportunity   `gorm:"constraint:OnDelete:CASCADE;foreignKey:OpportunityID;references:ID" json:"-"`
	UserID             uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	Motivation         string         `gorm:"not null;column:motivation" json:"motivation"`
	ProjectDescription string         `gorm:"not null;column:project_description" json:"project_description"`
	Documents          datatypes.JSON `gorm:"column:documents" json:"documents,omitempty"`
	VideoLink          *string        `gorm:"column:video_link" json:"video_link,omitempty"`
	Status             string         `gorm:"not null;default:'en cours';column:status" json:"status"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Application) TableName() string {
	return "application"
}
