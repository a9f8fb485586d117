package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/types"
)

func completedProfile(profileType string) *types.Profile {
	return &types.Profile{
		ID:               uuid.New(),
		Name:             "Awa",
		ProfileType:      profileType,
		ProfileCompleted: true,
	}
}

func publishedOpportunity(title, description string) *types.Opportunity {
	return &types.Opportunity{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      types.OpportunityStatusPublished,
	}
}

func TestRecommendForUser_UsesModelPicks(t *testing.T) {
	snapshot := []*types.Opportunity{
		publishedOpportunity("Fonds maraîcher", "Subvention pour les entrepreneurs agricoles"),
		publishedOpportunity("Concours cacao", "Prix d'innovation"),
	}
	ai := &fakeAI{
		configured: true,
		answer: fmt.Sprintf(`Voici ma sélection : [{"id":"%s","reason":"Adapté au maraîchage"}]`,
			snapshot[0].ID),
	}
	svc := NewRecommendationService(nil, testLogger(t),
		&fakeProfileRepo{profiles: []*types.Profile{completedProfile(types.ProfileTypeEntrepreneur)}},
		&fakeCatalog{snapshot: snapshot}, ai, "")

	got, err := svc.RecommendForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(got))
	}
	if got[0].Opportunity.ID != snapshot[0].ID || got[0].Reason != "Adapté au maraîchage" {
		t.Fatalf("unexpected recommendation: %+v", got[0])
	}
	if ai.lastReq.Temperature != 0.3 {
		t.Fatalf("expected temperature 0.3, got %v", ai.lastReq.Temperature)
	}
}

func TestRecommendForUser_IncompleteProfileGetsEmptyList(t *testing.T) {
	profile := completedProfile(types.ProfileTypeEntrepreneur)
	profile.ProfileCompleted = false
	ai := &fakeAI{configured: true}
	svc := NewRecommendationService(nil, testLogger(t),
		&fakeProfileRepo{profiles: []*types.Profile{profile}},
		&fakeCatalog{snapshot: []*types.Opportunity{publishedOpportunity("x", "y")}}, ai, "")

	got, err := svc.RecommendForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(got))
	}
	if ai.calls != 0 {
		t.Fatalf("expected no completion call for an incomplete profile")
	}
}

func TestRecommendForUser_FallsBackWhenOutputUnparseable(t *testing.T) {
	snapshot := []*types.Opportunity{
		publishedOpportunity("Appui entrepreneur", "Pour tout entrepreneur du vivrier"),
	}
	ai := &fakeAI{configured: true, answer: "je ne peux pas répondre en JSON"}
	svc := NewRecommendationService(nil, testLogger(t),
		&fakeProfileRepo{profiles: []*types.Profile{completedProfile(types.ProfileTypeEntrepreneur)}},
		&fakeCatalog{snapshot: snapshot}, ai, "")

	got, err := svc.RecommendForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Reason != fallbackReason {
		t.Fatalf("expected the deterministic fallback, got %+v", got)
	}
}

func TestRecommendForUser_SkipsCompletionWithoutCredential(t *testing.T) {
	snapshot := []*types.Opportunity{
		publishedOpportunity("Appui entrepreneur", "Pour tout entrepreneur du vivrier"),
	}
	ai := &fakeAI{configured: false}
	svc := NewRecommendationService(nil, testLogger(t),
		&fakeProfileRepo{profiles: []*types.Profile{completedProfile(types.ProfileTypeEntrepreneur)}},
		&fakeCatalog{snapshot: snapshot}, ai, "")

	got, err := svc.RecommendForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ai.calls != 0 {
		t.Fatalf("expected no completion call without a credential")
	}
	if len(got) != 1 || got[0].Reason != fallbackReason {
		t.Fatalf("expected the deterministic fallback, got %+v", got)
	}
}

func TestResolveRecommendations_CapsAtThreeAndDropsUnknownIDs(t *testing.T) {
	snapshot := make([]*types.Opportunity, 0, 5)
	picks := make([]recommendationPick, 0, 6)
	picks = append(picks, recommendationPick{ID: uuid.NewString(), Reason: "dangling"})
	for i := 0; i < 5; i++ {
		opp := publishedOpportunity(fmt.Sprintf("opp %d", i), "desc")
		snapshot = append(snapshot, opp)
		picks = append(picks, recommendationPick{ID: opp.ID.String(), Reason: "ok"})
	}

	got := resolveRecommendations(picks, snapshot)
	if len(got) != maxRecommendations {
		t.Fatalf("expected %d recommendations, got %d", maxRecommendations, len(got))
	}
	// The dangling id is dropped, so the first resolved item is the first
	// real opportunity.
	if got[0].Opportunity.ID != snapshot[0].ID {
		t.Fatalf("expected dangling id to be skipped")
	}
}

func TestFallbackRecommendations_FoldsAccents(t *testing.T) {
	snapshot := []*types.Opportunity{
		publishedOpportunity("Appui aux COOPÉRATIVES", "Renforcement des organisations"),
		publishedOpportunity("Concours cacao", "Prix d'innovation"),
	}
	got := fallbackRecommendations("cooperative", snapshot)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Opportunity.ID != snapshot[0].ID {
		t.Fatalf("expected the accented title to match")
	}
}

func TestFallbackRecommendations_InvestorKeywords(t *testing.T) {
	snapshot := []*types.Opportunity{
		publishedOpportunity("Fonds agricole", "Financement des exploitations avec un bon rendement"),
		publishedOpportunity("Formation", "Atelier de compostage"),
	}
	got := fallbackRecommendations("investor", snapshot)
	if len(got) != 1 || got[0].Opportunity.ID != snapshot[0].ID {
		t.Fatalf("expected the financement entry to match, got %+v", got)
	}
}

func TestBuildRecommendationPrompt_JoinsEntriesWithSeparator(t *testing.T) {
	snapshot := []*types.Opportunity{
		publishedOpportunity("Premier", "description un"),
		publishedOpportunity("Second", "description deux"),
	}
	prompt := buildRecommendationPrompt("entrepreneur", snapshot)
	if !strings.Contains(prompt, "\n---\n") {
		t.Fatalf("expected entries separated by ---")
	}
	for _, opp := range snapshot {
		if !strings.Contains(prompt, "ID: "+opp.ID.String()) {
			t.Fatalf("expected prompt to carry id %s", opp.ID)
		}
	}
	if !strings.Contains(prompt, `[{"id":"...","reason":"..."}`) {
		t.Fatalf("expected the JSON format contract in the prompt")
	}
}

func TestParseRecommendationJSON_AcceptsProseWrappedArray(t *testing.T) {
	answer := "Bien sûr ! Voici :\n```json\n[{\"id\":\"a\",\"reason\":\"b\"}]\n```"
	picks, ok := parseRecommendationJSON(answer)
	if !ok || len(picks) != 1 || picks[0].ID != "a" {
		t.Fatalf("expected the wrapped array to parse, got %v ok=%v", picks, ok)
	}
}

func TestParseRecommendationJSON_RejectsGarbage(t *testing.T) {
	for _, answer := range []string{"", "pas de JSON ici", "[not json]", "[]"} {
		if _, ok := parseRecommendationJSON(answer); ok {
			t.Fatalf("expected %q to be rejected", answer)
		}
	}
}
