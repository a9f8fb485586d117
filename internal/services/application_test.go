package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/types"
)

type fakeApplicationRepo struct {
	applications []*types.Application
	err          error
}

func (f *fakeApplicationRepo) Create(ctx context.Context, tx *gorm.DB, applications []*types.Application) ([]*types.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, app := range applications {
		if app.ID == uuid.Nil {
			app.ID = uuid.New()
		}
	}
	f.applications = append(f.applications, applications...)
	return applications, nil
}

func (f *fakeApplicationRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Application, error) {
	out := []*types.Application{}
	for _, app := range f.applications {
		for _, id := range userIDs {
			if app.UserID == id {
				out = append(out, app)
			}
		}
	}
	return out, f.err
}

func (f *fakeApplicationRepo) GetByOpportunityIDs(ctx context.Context, tx *gorm.DB, opportunityIDs []uuid.UUID) ([]*types.Application, error) {
	out := []*types.Application{}
	for _, app := range f.applications {
		for _, id := range opportunityIDs {
			if app.OpportunityID == id {
				out = append(out, app)
			}
		}
	}
	return out, f.err
}

func (f *fakeApplicationRepo) ExistsForUserAndOpportunity(ctx context.Context, tx *gorm.DB, userID, opportunityID uuid.UUID) (bool, error) {
	for _, app := range f.applications {
		if app.UserID == userID && app.OpportunityID == opportunityID {
			return true, f.err
		}
	}
	return false, f.err
}

func (f *fakeApplicationRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return f.err
}

func applicationFixture(t *testing.T, opportunities *fakeOpportunityRepo) (ApplicationService, *fakeApplicationRepo) {
	t.Helper()
	repo := &fakeApplicationRepo{}
	return NewApplicationService(nil, testLogger(t), repo, opportunities), repo
}

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	opp := publishedOpportunity("Fonds", "Subvention")
	svc, repo := applicationFixture(t, &fakeOpportunityRepo{opportunities: []*types.Opportunity{opp}})

	created, err := svc.Submit(context.Background(), &types.Application{
		OpportunityID:      opp.ID,
		UserID:             uuid.New(),
		Motivation:         "motivation",
		ProjectDescription: "projet",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != types.ApplicationStatusPending {
		t.Fatalf("expected status %q, got %q", types.ApplicationStatusPending, created.Status)
	}
	if len(repo.applications) != 1 {
		t.Fatalf("expected the application to be persisted")
	}
}

func TestSubmit_RejectsUnpublishedOpportunity(t *testing.T) {
	draft := publishedOpportunity("Brouillon", "pas visible")
	draft.Status = types.OpportunityStatusDraft
	svc, _ := applicationFixture(t, &fakeOpportunityRepo{opportunities: []*types.Opportunity{draft}})

	_, err := svc.Submit(context.Background(), &types.Application{
		OpportunityID:      draft.ID,
		UserID:             uuid.New(),
		Motivation:         "motivation",
		ProjectDescription: "projet",
	})
	if !errors.Is(err, ErrOpportunityNotOpen) {
		t.Fatalf("expected ErrOpportunityNotOpen, got %v", err)
	}
}

func TestSubmit_RejectsDuplicate(t *testing.T) {
	opp := publishedOpportunity("Fonds", "Subvention")
	svc, _ := applicationFixture(t, &fakeOpportunityRepo{opportunities: []*types.Opportunity{opp}})
	userID := uuid.New()

	application := func() *types.Application {
		return &types.Application{
			OpportunityID:      opp.ID,
			UserID:             userID,
			Motivation:         "motivation",
			ProjectDescription: "projet",
		}
	}
	if _, err := svc.Submit(context.Background(), application()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), application()); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
}

func TestSubmit_RequiresMotivationAndProject(t *testing.T) {
	opp := publishedOpportunity("Fonds", "Subvention")
	svc, _ := applicationFixture(t, &fakeOpportunityRepo{opportunities: []*types.Opportunity{opp}})

	_, err := svc.Submit(context.Background(), &types.Application{
		OpportunityID: opp.ID,
		UserID:        uuid.New(),
	})
	if !errors.Is(err, ErrInvalidApplicationStep) {
		t.Fatalf("expected ErrInvalidApplicationStep, got %v", err)
	}
}
