package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProfileTypeEntrepreneur = "entrepreneur"
	ProfileTypeCooperative  = "cooperative"
	ProfileTypeInvestor     = "investor"
	ProfileTypeIncubator    = "incubator"
	ProfileTypeInstitution  = "institution"
)

// ProfileTypeLabels maps the stored profile_type value to the label shown to
// the assistant and in the UI.
var ProfileTypeLabels = map[string]string{
	ProfileTypeEntrepreneur: "Entrepreneur Agricole",
	ProfileTypeCooperative:  "Coopérative",
	ProfileTypeInvestor:     "Investisseur",
	ProfileTypeIncubator:    "Incubateur",
	ProfileTypeInstitution:  "Institution",
}

type Profile struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ID;references:ID" json:"-"`
	Name             string         `gorm:"not null;column:name" json:"name"`
	ProfileType      string         `gorm:"not null;column:profile_type" json:"profile_type"`
	ProfileCompleted bool           `gorm:"not null;default:false;column:profile_completed" json:"profile_completed"`
	Location         *string        `gorm:"column:location" json:"location,omitempty"`
	Age              *int           `gorm:"column:age" json:"age,omitempty"`
	Gender           *string        `gorm:"column:gender" json:"gender,omitempty"`
	EducationLevel   *string        `gorm:"column:education_level" json:"education_level,omitempty"`
	ExperienceYears  *int           `gorm:"column:experience_years" json:"experience_years,omitempty"`
	CurrentStatus    *string        `gorm:"column:current_status" json:"current_status,omitempty"`
	Sectors          datatypes.JSON `gorm:"column:sectors" json:"sectors,omitempty"`
	Skills           datatypes.JSON `gorm:"column:skills" json:"skills,omitempty"`
	Languages        datatypes.JSON `gorm:"column:languages" json:"languages,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}

func IsValidProfileType(profileType string) bool {
	_, ok := ProfileTypeLabels[profileType]
	return ok
}
