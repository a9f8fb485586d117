package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/types"
)

// CatalogService produces the opportunity snapshot the recommendation and
// chat pipelines work from. A snapshot is fetched once per request and stays
// stable for the duration of that request; it only ever contains published
// rows.
type CatalogService interface {
	GetSnapshot(ctx context.Context) ([]*types.Opportunity, error)
}

type catalogService struct {
	db              *gorm.DB
	log             *logger.Logger
	opportunityRepo repos.OpportunityRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, opportunityRepo repos.OpportunityRepo) CatalogService {
	return &catalogService{
		db:              db,
		log:             log.With("service", "CatalogService"),
		opportunityRepo: opportunityRepo,
	}
}

func (cs *catalogService) GetSnapshot(ctx context.Context) ([]*types.Opportunity, error) {
	opportunities, err := cs.opportunityRepo.GetPublished(ctx, nil)
	if err != nil {
		cs.log.Error("Failed to fetch catalog snapshot", "error", err)
		return nil, err
	}
	return opportunities, nil
}
