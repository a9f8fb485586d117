package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Opportunity statuses keep the French values the catalog was built with;
// only published rows are visible outside the admin surface.
const (
	OpportunityStatusDraft     = "brouillon"
	OpportunityStatusPublished = "publié"
	OpportunityStatusArchived  = "archivé"
)

const (
	OpportunityTypeSubvention = "subvention"
	OpportunityTypeConcours   = "concours"
	OpportunityTypeFormation  = "formation"
	OpportunityTypeProjet     = "projet"
)

type Opportunity struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title               string         `gorm:"not null;column:title" json:"title"`
	Type                string         `gorm:"not null;column:type" json:"type"`
	Organization        string         `gorm:"not null;column:organization" json:"organization"`
	Description         string         `gorm:"not null;column:description" json:"description"`
	EligibilityCriteria string         `gorm:"column:eligibility_criteria" json:"eligibility_criteria"`
	Benefits            string         `gorm:"column:benefits" json:"benefits"`
	RequiredDocuments   datatypes.JSON `gorm:"column:required_documents" json:"required_documents,omitempty"`
	Deadline            time.Time      `gorm:"not null;column:deadline" json:"deadline"`
	ExternalLink        *string        `gorm:"column:external_link" json:"external_link,omitempty"`
	OfficialDocument    *string        `gorm:"column:official_document" json:"official_document,omitempty"`
	CoverImage          *string        `gorm:"column:cover_image" json:"cover_image,omitempty"`
	Status              string         `gorm:"not null;default:'brouillon';column:status" json:"status"`
	AuthorID            uuid.UUID      `gorm:"type:uuid;not null;column:author_id" json:"author_id"`
	SpecificData        datatypes.JSON `gorm:"column:specific_data" json:"specific_data,omitempty"`
	PDFURL              *string        `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	FullText            *string        `gorm:"column:full_text" json:"full_text,omitempty"`
	IAGeneratedAt       *time.Time     `gorm:"column:ia_generated_at" json:"ia_generated_at,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Opportunity) TableName() string {
	return "opportunity"
}

func IsValidOpportunityStatus(status string) bool {
	switch status {
	case OpportunityStatusDraft, OpportunityStatusPublished, OpportunityStatusArchived:
		return true
	}
	return false
}
