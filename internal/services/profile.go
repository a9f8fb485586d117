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

var ErrInvalidProfileType = errors.New("unknown profile type")

type ProfileService interface {
	UpsertProfile(ctx context.Context, profile *types.Profile) (*types.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	UpsertCooperative(ctx context.Context, cooperative *types.Cooperative) (*types.Cooperative, error)
	GetCooperative(ctx context.Context, userID uuid.UUID) (*types.Cooperative, error)
	UpsertInvestor(ctx context.Context, investor *types.Investor) (*types.Investor, error)
	GetInvestor(ctx context.Context, userID uuid.UUID) (*types.Investor, error)
}

type profileService struct {
	db              *gorm.DB
	log             *logger.Logger
	profileRepo     repos.ProfileRepo
	cooperativeRepo repos.CooperativeRepo
	investorRepo    repos.InvestorRepo
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	cooperativeRepo repos.CooperativeRepo,
	investorRepo repos.InvestorRepo,
) ProfileService {
	return &profileService{
		db:              db,
		log:             log.With("service", "ProfileService"),
		profileRepo:     profileRepo,
		cooperativeRepo: cooperativeRepo,
		investorRepo:    investorRepo,
	}
}

func (ps *profileService) UpsertProfile(ctx context.Context, profile *types.Profile) (*types.Profile, error) {
	if !types.IsValidProfileType(profile.ProfileType) {
		return nil, ErrInvalidProfileType
	}
	profile.ProfileCompleted = profileIsComplete(profile)
	saved, err := ps.profileRepo.Upsert(ctx, nil, []*types.Profile{profile})
	if err != nil {
		return nil, fmt.Errorf("Failed to upsert profile: %w", err)
	}
	return saved[0], nil
}

func (ps *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	profiles, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

func (ps *profileService) UpsertCooperative(ctx context.Context, cooperative *types.Cooperative) (*types.Cooperative, error) {
	saved, err := ps.cooperativeRepo.Upsert(ctx, nil, []*types.Cooperative{cooperative})
	if err != nil {
		return nil, fmt.Errorf("Failed to upsert cooperative: %w", err)
	}
	return saved[0], nil
}

func (ps *profileService) GetCooperative(ctx context.Context, userID uuid.UUID) (*types.Cooperative, error) {
	rows, err := ps.cooperativeRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load cooperative: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (ps *profileService) UpsertInvestor(ctx context.Context, investor *types.Investor) (*types.Investor, error) {
	saved, err := ps.investorRepo.Upsert(ctx, nil, []*types.Investor{investor})
	if err != nil {
		return nil, fmt.Errorf("Failed to upsert investor: %w", err)
	}
	return saved[0], nil
}

func (ps *profileService) GetInvestor(ctx context.Context, userID uuid.UUID) (*types.Investor, error) {
	rows, err := ps.investorRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load investor: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// profileIsComplete mirrors the onboarding rule: a profile counts as complete
// once the identity block and at least one sector are filled in.
func profileIsComplete(profile *types.Profile) bool {
	if profile.Name == "" || profile.ProfileType == "" {
		return false
	}
	if profile.Location == nil || *profile.Location == "" {
		return false
	}
	return len(profile.Sectors) > 0 && string(profile.Sectors) != "null" && string(profile.Sectors) != "[]"
}
