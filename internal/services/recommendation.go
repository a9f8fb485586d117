package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/normalization"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/types"
)

const (
	maxRecommendations = 3

	fallbackReason = "Cette opportunité correspond à votre profil"
)

// investorFallbackKeywords widen the substring fallback for investor
// profiles, whose type token rarely appears verbatim in descriptions.
var investorFallbackKeywords = []string{
	"investissement",
	"financement",
	"capital",
	"roi",
	"rendement",
}

type RecommendedOpportunity struct {
	Opportunity *types.Opportunity `json:"opportunity"`
	Reason      string             `json:"reason"`
}

// RecommendationService ranks the published catalog for a user profile. The
// AI path is best-effort: any failure is recovered locally with the
// deterministic substring fallback, never surfaced to the caller as an error.
type RecommendationService interface {
	RecommendForUser(ctx context.Context, userID uuid.UUID) ([]RecommendedOpportunity, error)
}

type recommendationService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	catalog     CatalogService
	ai          OpenAIClient
	model       string
}

func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	catalog CatalogService,
	ai OpenAIClient,
	model string,
) RecommendationService {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &recommendationService{
		db:          db,
		log:         log.With("service", "RecommendationService"),
		profileRepo: profileRepo,
		catalog:     catalog,
		ai:          ai,
		model:       model,
	}
}

func (rs *recommendationService) RecommendForUser(ctx context.Context, userID uuid.UUID) ([]RecommendedOpportunity, error) {
	profiles, err := rs.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		rs.log.Error("Failed to load profile for recommendations", "userID", userID, "error", err)
		return []RecommendedOpportunity{}, nil
	}
	if len(profiles) == 0 || !profiles[0].ProfileCompleted {
		// An incomplete profile gets no recommendations; that is an empty
		// state, not an error.
		return []RecommendedOpportunity{}, nil
	}
	profile := profiles[0]
	profileType := normalization.ParseInputString(profile.ProfileType)

	snapshot, err := rs.catalog.GetSnapshot(ctx)
	if err != nil {
		return []RecommendedOpportunity{}, nil
	}
	if len(snapshot) == 0 {
		return []RecommendedOpportunity{}, nil
	}

	if !rs.ai.Configured() {
		return fallbackRecommendations(profileType, snapshot), nil
	}

	prompt := buildRecommendationPrompt(profileType, snapshot)
	answer, err := rs.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Model:       rs.model,
		Temperature: 0.3,
		Messages: []types.ChatMessage{
			{Role: "system", Content: prompt},
		},
	})
	if err != nil {
		rs.log.Warn("Completion call failed, using deterministic fallback", "error", err)
		return fallbackRecommendations(profileType, snapshot), nil
	}

	picks, ok := parseRecommendationJSON(answer)
	if !ok {
		rs.log.Warn("Completion output was not parseable as recommendations, using deterministic fallback")
		return fallbackRecommendations(profileType, snapshot), nil
	}

	resolved := resolveRecommendations(picks, snapshot)
	if len(resolved) == 0 {
		return fallbackRecommendations(profileType, snapshot), nil
	}
	return resolved, nil
}

// buildRecommendationPrompt is a pure function of the profile type and the
// snapshot, so the exact text sent to the completion API is unit-testable
// without any network call.
func buildRecommendationPrompt(profileType string, snapshot []*types.Opportunity) string {
	var b strings.Builder
	b.WriteString("Tu es un assistant de recommandations AgroSub.\n")
	fmt.Fprintf(&b, "L'utilisateur est de type \"%s\".\n", profileType)
	b.WriteString("Parmi ces descriptions d'opportunités, sélectionne jusqu'à 3 items\n")
	b.WriteString("particulièrement pertinents pour ce type de profil en recherchant\n")
	b.WriteString("des variations grammaticales et termes associés.\n")
	b.WriteString("Format de la réponse JSON : [{\"id\":\"...\",\"reason\":\"...\"},...].\n")
	b.WriteString("Détails des opportunités :\n")
	entries := make([]string, 0, len(snapshot))
	for _, opp := range snapshot {
		entries = append(entries, fmt.Sprintf("ID: %s\n%s\n%s", opp.ID, opp.Title, opp.Description))
	}
	b.WriteString(strings.Join(entries, "\n---\n"))
	return b.String()
}

type recommendationPick struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// parseRecommendationJSON extracts the JSON array the model was asked for.
// The model sometimes wraps it in prose or a code fence, so the parse scans
// for the outermost brackets. The boolean result is the single branch point
// deciding whether the fallback runs.
func parseRecommendationJSON(answer string) ([]recommendationPick, bool) {
	start := strings.Index(answer, "[")
	end := strings.LastIndex(answer, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	var picks []recommendationPick
	if err := json.Unmarshal([]byte(answer[start:end+1]), &picks); err != nil {
		return nil, false
	}
	if len(picks) == 0 {
		return nil, false
	}
	return picks, true
}

// resolveRecommendations maps returned ids back onto the snapshot the prompt
// was built from. Ids that do not resolve are dropped, never rendered.
func resolveRecommendations(picks []recommendationPick, snapshot []*types.Opportunity) []RecommendedOpportunity {
	byID := make(map[string]*types.Opportunity, len(snapshot))
	for _, opp := range snapshot {
		byID[opp.ID.String()] = opp
	}
	out := make([]RecommendedOpportunity, 0, maxRecommendations)
	for _, pick := range picks {
		if len(out) == maxRecommendations {
			break
		}
		opp, found := byID[strings.TrimSpace(pick.ID)]
		if !found {
			continue
		}
		out = append(out, RecommendedOpportunity{Opportunity: opp, Reason: pick.Reason})
	}
	return out
}

// fallbackRecommendations is the deterministic path: accent-folded,
// case-insensitive substring match of the profile type over title and
// description. It needs no network and never fails.
func fallbackRecommendations(profileType string, snapshot []*types.Opportunity) []RecommendedOpportunity {
	normalizedType := normalization.FoldAccents(profileType)
	out := make([]RecommendedOpportunity, 0, maxRecommendations)
	for _, opp := range snapshot {
		if len(out) == maxRecommendations {
			break
		}
		searchText := normalization.FoldAccents(opp.Title + " " + opp.Description)
		if fallbackMatches(normalizedType, searchText) {
			out = append(out, RecommendedOpportunity{Opportunity: opp, Reason: fallbackReason})
		}
	}
	return out
}

func fallbackMatches(normalizedType, searchText string) bool {
	if strings.Contains(normalizedType, "investisseur") || strings.Contains(normalizedType, "investor") {
		for _, kw := range investorFallbackKeywords {
			if strings.Contains(searchText, kw) {
				return true
			}
		}
		return false
	}
	return strings.Contains(searchText, normalizedType)
}
