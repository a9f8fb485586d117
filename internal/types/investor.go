package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Investor holds the investor onboarding form, one row per profile.
type Investor struct {
	ID                      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Profile                 *Profile       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ID;references:ID" json:"-"`
	OrganizationName        *string        `gorm:"column:organization_name" json:"organization_name,omitempty"`
	Description             *string        `gorm:"column:description" json:"description,omitempty"`
	InvestmentFocus         *string        `gorm:"column:investment_focus" json:"investment_focus,omitempty"`
	SectorsOfInterest       datatypes.JSON `gorm:"column:sectors_of_interest" json:"sectors_of_interest,omitempty"`
	TargetRegions           datatypes.JSON `gorm:"column:target_regions" json:"target_regions,omitempty"`
	StructureTypes          datatypes.JSON `gorm:"column:structure_types" json:"structure_types,omitempty"`
	InvestmentRangeMin      *float64       `gorm:"column:investment_range_min" json:"investment_range_min,omitempty"`
	InvestmentRangeMax      *float64       `gorm:"column:investment_range_max" json:"investment_range_max,omitempty"`
	ExpectedROI             *string        `gorm:"column:expected_roi" json:"expected_roi,omitempty"`
	DurationPreference      *string        `gorm:"column:duration_preference" json:"duration_preference,omitempty"`
	ImpactIndicators        datatypes.JSON `gorm:"column:impact_indicators" json:"impact_indicators,omitempty"`
	SupportType             datatypes.JSON `gorm:"column:support_type" json:"support_type,omitempty"`
	Region                  *string        `gorm:"column:region" json:"region,omitempty"`
	Department              *string        `gorm:"column:department" json:"department,omitempty"`
	City                    *string        `gorm:"column:city" json:"city,omitempty"`
	Address                 *string        `gorm:"column:address" json:"address,omitempty"`
	Phone                   *string        `gorm:"column:phone" json:"phone,omitempty"`
	Email                   *string        `gorm:"column:email" json:"email,omitempty"`
	Website                 *string        `gorm:"column:website" json:"website,omitempty"`
	RegistrationDocumentURL *string        `gorm:"column:registration_document_url" json:"registration_document_url,omitempty"`
	CreatedAt               time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt               time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Investor) TableName() string {
	return "investor"
}
