package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/types"
)

func newChatFixture(t *testing.T, ai *fakeAI, opportunities *fakeOpportunityRepo) ChatService {
	t.Helper()
	log := testLogger(t)
	return NewChatService(nil, log,
		&fakeProfileRepo{profiles: []*types.Profile{completedProfile(types.ProfileTypeEntrepreneur)}},
		opportunities,
		&fakeCatalog{snapshot: opportunities.opportunities},
		NewMemoryConversationStore(log, time.Hour),
		ai, "", "")
}

func TestSendCatalogMessage_KeepsTurnOrderAcrossExchanges(t *testing.T) {
	opportunities := &fakeOpportunityRepo{opportunities: []*types.Opportunity{
		publishedOpportunity("Fonds maraîcher", "Subvention"),
	}}
	ai := &fakeAI{configured: true, answer: "Voici une opportunité."}
	svc := newChatFixture(t, ai, opportunities)
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := svc.SendCatalogMessage(context.Background(), userID, "que proposez-vous ?"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	history, err := svc.CatalogHistory(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages after 2 exchanges, got %d", len(history))
	}
	for i, msg := range history {
		wantRole := types.ChatRoleUser
		if i%2 == 1 {
			wantRole = types.ChatRoleAssistant
		}
		if msg.Role != wantRole {
			t.Fatalf("message %d: expected role %q, got %q", i, wantRole, msg.Role)
		}
	}
}

func TestSendCatalogMessage_AppendsApologyOnCompletionFailure(t *testing.T) {
	opportunities := &fakeOpportunityRepo{opportunities: []*types.Opportunity{
		publishedOpportunity("Fonds maraîcher", "Subvention"),
	}}
	ai := &fakeAI{configured: true, err: errFake}
	svc := newChatFixture(t, ai, opportunities)
	userID := uuid.New()

	turn, err := svc.SendCatalogMessage(context.Background(), userID, "bonjour")
	if err != nil {
		t.Fatalf("a failed completion must not fail the turn: %v", err)
	}
	if turn.Reply.Content != chatApologyMessage {
		t.Fatalf("expected the apology reply, got %q", turn.Reply.Content)
	}
	// The user turn survives even though the assistant failed.
	if len(turn.History) != 2 || turn.History[0].Role != types.ChatRoleUser {
		t.Fatalf("expected [user, assistant] history, got %+v", turn.History)
	}
}

func TestSendOpportunityMessage_RejectsUnpublished(t *testing.T) {
	draft := publishedOpportunity("Brouillon", "pas encore visible")
	draft.Status = types.OpportunityStatusDraft
	opportunities := &fakeOpportunityRepo{opportunities: []*types.Opportunity{draft}}
	svc := newChatFixture(t, &fakeAI{configured: true, answer: "ok"}, opportunities)

	if _, err := svc.SendOpportunityMessage(context.Background(), uuid.New(), draft.ID, "question"); err == nil {
		t.Fatalf("expected an error for a non-published opportunity")
	}
}

func TestSendOpportunityMessage_UsesContextTemperature(t *testing.T) {
	opp := publishedOpportunity("Fonds", "Subvention maraîchère")
	opportunities := &fakeOpportunityRepo{opportunities: []*types.Opportunity{opp}}
	ai := &fakeAI{configured: true, answer: "Réponse."}
	svc := newChatFixture(t, ai, opportunities)

	if _, err := svc.SendOpportunityMessage(context.Background(), uuid.New(), opp.ID, "est-ce pour moi ?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ai.lastReq.Temperature != 0.4 {
		t.Fatalf("expected temperature 0.4, got %v", ai.lastReq.Temperature)
	}
	if ai.lastReq.Messages[0].Role != "system" {
		t.Fatalf("expected a leading system message")
	}
}

func TestIsGreeting(t *testing.T) {
	for _, msg := range []string{"Bonjour", "salut à tous", "coucou!", "Hello there", "hi"} {
		if !IsGreeting(msg) {
			t.Fatalf("expected %q to be a greeting", msg)
		}
	}
	for _, msg := range []string{"quelles subventions ?", "historique", "salutations distinguées"} {
		if IsGreeting(msg) {
			t.Fatalf("expected %q not to be a greeting", msg)
		}
	}
}

func TestBuildCatalogPrompt_GreetingBranchSwitchesInstructions(t *testing.T) {
	snapshot := []*types.Opportunity{publishedOpportunity("Fonds", "Subvention")}

	greeting := buildCatalogPrompt("entrepreneur", snapshot, "bonjour")
	if !strings.Contains(greeting, "Réponds au salut") {
		t.Fatalf("expected the greeting instructions")
	}
	question := buildCatalogPrompt("entrepreneur", snapshot, "quelles subventions ?")
	if strings.Contains(question, "Réponds au salut") {
		t.Fatalf("did not expect the greeting instructions")
	}
	// The format contract is present on both branches.
	for _, prompt := range []string{greeting, question} {
		if !strings.Contains(prompt, "👉") || !strings.Contains(prompt, "#1 — Fonds") {
			t.Fatalf("expected the format contract and the numbered listing")
		}
	}
}

func TestBuildOpportunityPrompt_CarriesProfileLabelAndCompletion(t *testing.T) {
	opp := publishedOpportunity("Fonds", "Résumé de l'opportunité")
	prompt := buildOpportunityPrompt(opp, types.ProfileTypeInvestor, false)
	if !strings.Contains(prompt, "Investisseur") {
		t.Fatalf("expected the profile label")
	}
	if !strings.Contains(prompt, "incomplet") {
		t.Fatalf("expected the incomplete marker")
	}
	if !strings.Contains(prompt, "Résumé de l'opportunité") {
		t.Fatalf("expected the opportunity summary")
	}
}

func TestCollapseNewlines(t *testing.T) {
	in := "ligne 1\n\n\n\nligne 2\nligne 3"
	want := "ligne 1\n\nligne 2\n\nligne 3"
	if got := collapseNewlines(in); got != want {
		t.Fatalf("collapseNewlines = %q, want %q", got, want)
	}
}
