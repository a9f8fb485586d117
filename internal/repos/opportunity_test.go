package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

// opportunityTableDDL mirrors the postgres schema without the uuid defaults,
// which sqlite cannot evaluate. Tests set ids explicitly.
const opportunityTableDDL = `
CREATE TABLE opportunity (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	type TEXT NOT NULL,
	organization TEXT NOT NULL,
	description TEXT NOT NULL,
	eligibility_criteria TEXT,
	benefits TEXT,
	required_documents TEXT,
	deadline DATETIME NOT NULL,
	external_link TEXT,
	official_document TEXT,
	cover_image TEXT,
	status TEXT NOT NULL DEFAULT 'brouillon',
	author_id TEXT NOT NULL,
	specific_data TEXT,
	pdf_url TEXT,
	full_text TEXT,
	ia_generated_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

func opportunityRepoFixture(t *testing.T) OpportunityRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Exec(opportunityTableDDL).Error; err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return NewOpportunityRepo(db, log)
}

func seedOpportunity(t *testing.T, repo OpportunityRepo, title, status string, createdAt time.Time) *types.Opportunity {
	t.Helper()
	opp := &types.Opportunity{
		ID:           uuid.New(),
		Title:        title,
		Type:         types.OpportunityTypeSubvention,
		Organization: "Ministère",
		Description:  "description",
		Deadline:     createdAt.AddDate(0, 1, 0),
		Status:       status,
		AuthorID:     uuid.New(),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if _, err := repo.Create(context.Background(), nil, []*types.Opportunity{opp}); err != nil {
		t.Fatalf("failed to seed opportunity: %v", err)
	}
	return opp
}

func TestGetPublished_FiltersDraftsAndArchives(t *testing.T) {
	repo := opportunityRepoFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedOpportunity(t, repo, "draft one", types.OpportunityStatusDraft, base)
	seedOpportunity(t, repo, "archived", types.OpportunityStatusArchived, base.Add(time.Hour))
	published := []*types.Opportunity{
		seedOpportunity(t, repo, "oldest", types.OpportunityStatusPublished, base.Add(2*time.Hour)),
		seedOpportunity(t, repo, "middle", types.OpportunityStatusPublished, base.Add(3*time.Hour)),
		seedOpportunity(t, repo, "newest", types.OpportunityStatusPublished, base.Add(4*time.Hour)),
	}

	got, err := repo.GetPublished(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 published rows, got %d", len(got))
	}
	// Newest first.
	if got[0].ID != published[2].ID || got[2].ID != published[0].ID {
		t.Fatalf("expected newest-first ordering, got %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}
	for _, opp := range got {
		if opp.Status != types.OpportunityStatusPublished {
			t.Fatalf("unexpected status %q in published listing", opp.Status)
		}
	}
}

func TestSetStatus_MovesRowBetweenListings(t *testing.T) {
	repo := opportunityRepoFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	opp := seedOpportunity(t, repo, "draft", types.OpportunityStatusDraft, base)

	if err := repo.SetStatus(context.Background(), nil, opp.ID, types.OpportunityStatusPublished); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetPublished(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != opp.ID {
		t.Fatalf("expected the row to appear in the published listing")
	}
}

func TestGetByIDs_ReturnsOnlyRequestedRows(t *testing.T) {
	repo := opportunityRepoFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first := seedOpportunity(t, repo, "first", types.OpportunityStatusPublished, base)
	seedOpportunity(t, repo, "second", types.OpportunityStatusPublished, base)

	got, err := repo.GetByIDs(context.Background(), nil, []uuid.UUID{first.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != first.ID {
		t.Fatalf("expected only the requested row, got %d rows", len(got))
	}
}
