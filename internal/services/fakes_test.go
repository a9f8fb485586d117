package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

type fakeProfileRepo struct {
	profiles []*types.Profile
	err      error
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error) {
	return profiles, f.err
}

func (f *fakeProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Profile, error) {
	return f.profiles, f.err
}

type fakeOpportunityRepo struct {
	opportunities []*types.Opportunity
	err           error
}

func (f *fakeOpportunityRepo) Create(ctx context.Context, tx *gorm.DB, opportunities []*types.Opportunity) ([]*types.Opportunity, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, opp := range opportunities {
		if opp.ID == uuid.Nil {
			opp.ID = uuid.New()
		}
	}
	f.opportunities = append(f.opportunities, opportunities...)
	return opportunities, nil
}

func (f *fakeOpportunityRepo) Update(ctx context.Context, tx *gorm.DB, opportunity *types.Opportunity) error {
	return f.err
}

func (f *fakeOpportunityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Opportunity, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*types.Opportunity, 0, len(ids))
	for _, opp := range f.opportunities {
		for _, id := range ids {
			if opp.ID == id {
				out = append(out, opp)
			}
		}
	}
	return out, nil
}

func (f *fakeOpportunityRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Opportunity, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*types.Opportunity, 0, len(f.opportunities))
	for _, opp := range f.opportunities {
		if opp.Status == types.OpportunityStatusPublished {
			out = append(out, opp)
		}
	}
	return out, nil
}

func (f *fakeOpportunityRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Opportunity, error) {
	return f.opportunities, f.err
}

func (f *fakeOpportunityRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return f.err
}

type fakeCatalog struct {
	snapshot []*types.Opportunity
	err      error
}

func (f *fakeCatalog) GetSnapshot(ctx context.Context) ([]*types.Opportunity, error) {
	return f.snapshot, f.err
}

// fakeAI records the last request and answers from a script.
type fakeAI struct {
	configured bool
	answer     string
	err        error
	lastReq    ChatCompletionRequest
	calls      int
}

func (f *fakeAI) Configured() bool { return f.configured }

func (f *fakeAI) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error) {
	f.lastReq = req
	f.calls++
	return f.answer, f.err
}

func (f *fakeAI) TranscribeAudio(ctx context.Context, audio []byte, filename, language string) (string, error) {
	return f.answer, f.err
}

var errFake = errors.New("fake failure")
