package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/types"
)

var (
	ErrAlreadyApplied         = errors.New("an application already exists for this opportunity")
	ErrOpportunityNotOpen     = errors.New("opportunity is not open for applications")
	ErrInvalidApplicationStep = errors.New("motivation and project description are required")
)

type ApplicationService interface {
	Submit(ctx context.Context, application *types.Application) (*types.Application, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Application, error)
	ListForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*types.Application, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type applicationService struct {
	db              *gorm.DB
	log             *logger.Logger
	applicationRepo repos.ApplicationRepo
	opportunityRepo repos.OpportunityRepo
}

func NewApplicationService(
	db *gorm.DB,
	log *logger.Logger,
	applicationRepo repos.ApplicationRepo,
	opportunityRepo repos.OpportunityRepo,
) ApplicationService {
	return &applicationService{
		db:              db,
		log:             log.With("service", "ApplicationService"),
		applicationRepo: applicationRepo,
		opportunityRepo: opportunityRepo,
	}
}

func (as *applicationService) Submit(ctx context.Context, application *types.Application) (*types.Application, error) {
	if application.Motivation == "" || application.ProjectDescription == "" {
		return nil, ErrInvalidApplicationStep
	}

	opportunities, err := as.opportunityRepo.GetByIDs(ctx, nil, []uuid.UUID{application.OpportunityID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load opportunity: %w", err)
	}
	if len(opportunities) == 0 || opportunities[0].Status != types.OpportunityStatusPublished {
		return nil, ErrOpportunityNotOpen
	}

	exists, err := as.applicationRepo.ExistsForUserAndOpportunity(ctx, nil, application.UserID, application.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("Failed to check existing application: %w", err)
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	application.Status = types.ApplicationStatusPending
	created, err := as.applicationRepo.Create(ctx, nil, []*types.Application{application})
	if err != nil {
		return nil, fmt.Errorf("Failed to create application: %w", err)
	}
	as.log.Info("Application submitted", "userID", application.UserID, "opportunityID", application.OpportunityID)
	return created[0], nil
}

func (as *applicationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Application, error) {
	rows, err := as.applicationRepo.GetByUserIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to list applications: %w", err)
	}
	return rows, nil
}

func (as *applicationService) ListForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*types.Application, error) {
	rows, err := as.applicationRepo.GetByOpportunityIDs(ctx, nil, []uuid.UUID{opportunityID})
	if err != nil {
		return nil, fmt.Errorf("Failed to list applications: %w", err)
	}
	return rows, nil
}

func (as *applicationService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case types.ApplicationStatusPending, types.ApplicationStatusRejected, types.ApplicationStatusAccepted:
	default:
		return fmt.Errorf("unknown application status %q", status)
	}
	if err := as.applicationRepo.SetStatus(ctx, nil, id, status); err != nil {
		return fmt.Errorf("Failed to set application status: %w", err)
	}
	return nil
}
