package types

import (
	"time"

	"github.com/google/uuid"
)

// Cooperative holds the cooperative onboarding form, one row per profile.
type Cooperative struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Profile                 *Profile  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ID;references:ID" json:"-"`
	Name                    *string   `gorm:"column:name" json:"name,omitempty"`
	Description             *string   `gorm:"column:description" json:"description,omitempty"`
	Sector                  *string   `gorm:"column:sector" json:"sector,omitempty"`
	Region                  *string   `gorm:"column:region" json:"region,omitempty"`
	Department              *string   `gorm:"column:department" json:"department,omitempty"`
	City                    *string   `gorm:"column:city" json:"city,omitempty"`
	Address                 *string   `gorm:"column:address" json:"address,omitempty"`
	MemberCount             *int      `gorm:"column:member_count" json:"member_count,omitempty"`
	LeadershipStructure     *string   `gorm:"column:leadership_structure" json:"leadership_structure,omitempty"`
	Phone                   *string   `gorm:"column:phone" json:"phone,omitempty"`
	Email                   *string   `gorm:"column:email" json:"email,omitempty"`
	Website                 *string   `gorm:"column:website" json:"website,omitempty"`
	RegistrationDocumentURL *string   `gorm:"column:registration_document_url" json:"registration_document_url,omitempty"`
	StatutesURL             *string   `gorm:"column:statutes_url" json:"statutes_url,omitempty"`
	Objectives              *string   `gorm:"column:objectives" json:"objectives,omitempty"`
	MainActivities          *string   `gorm:"column:main_activities" json:"main_activities,omitempty"`
	CreatedAt               time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt               time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Cooperative) TableName() string {
	return "cooperative"
}
