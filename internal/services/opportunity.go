package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/types"
)

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrInvalidStatus       = errors.New("unknown opportunity status")
)

// OpportunityService is the admin surface over the catalog: drafts are
// created and edited here, then moved through publié/archivé. Readers go
// through CatalogService instead.
type OpportunityService interface {
	Create(ctx context.Context, opportunity *types.Opportunity) (*types.Opportunity, error)
	Update(ctx context.Context, opportunity *types.Opportunity) (*types.Opportunity, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Opportunity, error)
	ListAll(ctx context.Context) ([]*types.Opportunity, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	AttachDocument(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (string, error)
}

type opportunityService struct {
	db              *gorm.DB
	log             *logger.Logger
	opportunityRepo repos.OpportunityRepo
	bucket          BucketService
}

func NewOpportunityService(
	db *gorm.DB,
	log *logger.Logger,
	opportunityRepo repos.OpportunityRepo,
	bucket BucketService,
) OpportunityService {
	return &opportunityService{
		db:              db,
		log:             log.With("service", "OpportunityService"),
		opportunityRepo: opportunityRepo,
		bucket:          bucket,
	}
}

func (os *opportunityService) Create(ctx context.Context, opportunity *types.Opportunity) (*types.Opportunity, error) {
	if opportunity.Title == "" || opportunity.Description == "" {
		return nil, fmt.Errorf("title and description are required")
	}
	if opportunity.Status == "" {
		opportunity.Status = types.OpportunityStatusDraft
	}
	if !types.IsValidOpportunityStatus(opportunity.Status) {
		return nil, ErrInvalidStatus
	}
	if opportunity.Deadline.IsZero() {
		opportunity.Deadline = time.Now().AddDate(0, 0, 30)
	}
	created, err := os.opportunityRepo.Create(ctx, nil, []*types.Opportunity{opportunity})
	if err != nil {
		return nil, fmt.Errorf("Failed to create opportunity: %w", err)
	}
	return created[0], nil
}

func (os *opportunityService) Update(ctx context.Context, opportunity *types.Opportunity) (*types.Opportunity, error) {
	existing, err := os.Get(ctx, opportunity.ID)
	if err != nil {
		return nil, err
	}
	// Status transitions go through SetStatus, not Update.
	opportunity.Status = existing.Status
	opportunity.AuthorID = existing.AuthorID
	if err := os.opportunityRepo.Update(ctx, nil, opportunity); err != nil {
		return nil, fmt.Errorf("Failed to update opportunity: %w", err)
	}
	return opportunity, nil
}

func (os *opportunityService) Get(ctx context.Context, id uuid.UUID) (*types.Opportunity, error) {
	rows, err := os.opportunityRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("Failed to load opportunity: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrOpportunityNotFound
	}
	return rows[0], nil
}

func (os *opportunityService) ListAll(ctx context.Context) ([]*types.Opportunity, error) {
	rows, err := os.opportunityRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to list opportunities: %w", err)
	}
	return rows, nil
}

func (os *opportunityService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !types.IsValidOpportunityStatus(status) {
		return ErrInvalidStatus
	}
	if _, err := os.Get(ctx, id); err != nil {
		return err
	}
	if err := os.opportunityRepo.SetStatus(ctx, nil, id, status); err != nil {
		return fmt.Errorf("Failed to set opportunity status: %w", err)
	}
	os.log.Info("Opportunity status changed", "id", id, "status", status)
	return nil
}

func (os *opportunityService) AttachDocument(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (string, error) {
	opportunity, err := os.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if os.bucket == nil {
		return "", fmt.Errorf("document storage is not configured")
	}
	key := fmt.Sprintf("opportunities/%s/%s", id, filename)
	url, err := os.bucket.Upload(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("Failed to upload document: %w", err)
	}
	opportunity.OfficialDocument = &url
	if err := os.opportunityRepo.Update(ctx, nil, opportunity); err != nil {
		return "", fmt.Errorf("Failed to store document reference: %w", err)
	}
	return url, nil
}
