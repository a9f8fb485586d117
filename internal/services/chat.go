package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/types"
)

const chatApologyMessage = "Désolé, une erreur est survenue. Veuillez reformuler votre demande."

var (
	greetingPattern = regexp.MustCompile(`(?i)\b(bonjour|salut|coucou|hello|hi)\b`)
	newlineRuns     = regexp.MustCompile(`\n+`)
)

type ChatTurn struct {
	Reply   types.ChatMessage   `json:"reply"`
	History []types.ChatMessage `json:"history"`
}

// ChatService drives both assistants: the catalog-wide one and the
// per-opportunity one. A user turn is always appended before the completion
// call, and a turn is never dropped: on any failure the fixed apology is
// appended in place of the model reply.
type ChatService interface {
	SendCatalogMessage(ctx context.Context, userID uuid.UUID, content string) (*ChatTurn, error)
	CatalogHistory(ctx context.Context, userID uuid.UUID) ([]types.ChatMessage, error)
	SendOpportunityMessage(ctx context.Context, userID, opportunityID uuid.UUID, content string) (*ChatTurn, error)
	OpportunityHistory(ctx context.Context, userID, opportunityID uuid.UUID) ([]types.ChatMessage, error)
}

type chatService struct {
	db              *gorm.DB
	log             *logger.Logger
	profileRepo     repos.ProfileRepo
	opportunityRepo repos.OpportunityRepo
	catalog         CatalogService
	conversations   ConversationStore
	ai              OpenAIClient
	catalogModel    string
	contextModel    string
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	opportunityRepo repos.OpportunityRepo,
	catalog CatalogService,
	conversations ConversationStore,
	ai OpenAIClient,
	catalogModel string,
	contextModel string,
) ChatService {
	if catalogModel == "" {
		catalogModel = "gpt-4o"
	}
	if contextModel == "" {
		contextModel = "gpt-4o-mini"
	}
	return &chatService{
		db:              db,
		log:             log.With("service", "ChatService"),
		profileRepo:     profileRepo,
		opportunityRepo: opportunityRepo,
		catalog:         catalog,
		conversations:   conversations,
		ai:              ai,
		catalogModel:    catalogModel,
		contextModel:    contextModel,
	}
}

func catalogConversationKey(userID uuid.UUID) string {
	return "catalog:" + userID.String()
}

func opportunityConversationKey(userID, opportunityID uuid.UUID) string {
	return "opportunity:" + opportunityID.String() + ":" + userID.String()
}

func (cs *chatService) SendCatalogMessage(ctx context.Context, userID uuid.UUID, content string) (*ChatTurn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is empty")
	}
	key := catalogConversationKey(userID)

	// The user turn is appended before the assistant is consulted, so it is
	// kept even when the completion call fails.
	if err := cs.conversations.Append(ctx, key, types.ChatMessage{Role: types.ChatRoleUser, Content: content}); err != nil {
		return nil, fmt.Errorf("Failed to append user message: %w", err)
	}

	var snapshot []*types.Opportunity
	profileType := ""
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		opportunities, err := cs.catalog.GetSnapshot(groupCtx)
		if err != nil {
			return err
		}
		snapshot = opportunities
		return nil
	})
	group.Go(func() error {
		profiles, err := cs.profileRepo.GetByIDs(groupCtx, nil, []uuid.UUID{userID})
		if err != nil {
			// An unknown profile is a valid state for the catalog chat.
			cs.log.Warn("Failed to load profile for chat, treating as unknown", "userID", userID, "error", err)
			return nil
		}
		if len(profiles) > 0 {
			profileType = profiles[0].ProfileType
		}
		return nil
	})

	reply := types.ChatMessage{Role: types.ChatRoleAssistant, Content: chatApologyMessage}
	if err := group.Wait(); err != nil {
		cs.log.Error("Failed to fetch catalog snapshot for chat", "error", err)
	} else {
		systemPrompt := buildCatalogPrompt(profileType, snapshot, content)
		answer, err := cs.ai.ChatCompletion(ctx, ChatCompletionRequest{
			Model:       cs.catalogModel,
			Temperature: 0.3,
			Messages: []types.ChatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: types.ChatRoleUser, Content: content},
			},
		})
		if err != nil {
			cs.log.Warn("Catalog chat completion failed", "error", err)
		} else {
			reply.Content = collapseNewlines(answer)
		}
	}

	return cs.appendReply(ctx, key, reply)
}

func (cs *chatService) CatalogHistory(ctx context.Context, userID uuid.UUID) ([]types.ChatMessage, error) {
	return cs.conversations.History(ctx, catalogConversationKey(userID))
}

func (cs *chatService) SendOpportunityMessage(ctx context.Context, userID, opportunityID uuid.UUID, content string) (*ChatTurn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is empty")
	}

	opportunities, err := cs.opportunityRepo.GetByIDs(ctx, nil, []uuid.UUID{opportunityID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load opportunity: %w", err)
	}
	if len(opportunities) == 0 || opportunities[0].Status != types.OpportunityStatusPublished {
		return nil, fmt.Errorf("opportunity not found")
	}
	opportunity := opportunities[0]

	profileType := ""
	profileCompleted := false
	profiles, err := cs.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		cs.log.Warn("Failed to load profile for opportunity chat", "userID", userID, "error", err)
	} else if len(profiles) > 0 {
		profileType = profiles[0].ProfileType
		profileCompleted = profiles[0].ProfileCompleted
	}

	key := opportunityConversationKey(userID, opportunityID)
	if err := cs.conversations.Append(ctx, key, types.ChatMessage{Role: types.ChatRoleUser, Content: content}); err != nil {
		return nil, fmt.Errorf("Failed to append user message: %w", err)
	}
	history, err := cs.conversations.History(ctx, key)
	if err != nil {
		cs.log.Warn("Failed to load conversation history, sending current turn only", "error", err)
		history = []types.ChatMessage{{Role: types.ChatRoleUser, Content: content}}
	}

	systemPrompt := buildOpportunityPrompt(opportunity, profileType, profileCompleted)
	messages := make([]types.ChatMessage, 0, len(history)+1)
	messages = append(messages, types.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	reply := types.ChatMessage{Role: types.ChatRoleAssistant, Content: chatApologyMessage}
	answer, err := cs.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Model:       cs.contextModel,
		Temperature: 0.4,
		Messages:    messages,
	})
	if err != nil {
		cs.log.Warn("Opportunity chat completion failed", "opportunityID", opportunityID, "error", err)
	} else {
		reply.Content = collapseNewlines(answer)
	}

	return cs.appendReply(ctx, key, reply)
}

func (cs *chatService) OpportunityHistory(ctx context.Context, userID, opportunityID uuid.UUID) ([]types.ChatMessage, error) {
	return cs.conversations.History(ctx, opportunityConversationKey(userID, opportunityID))
}

func (cs *chatService) appendReply(ctx context.Context, key string, reply types.ChatMessage) (*ChatTurn, error) {
	if err := cs.conversations.Append(ctx, key, reply); err != nil {
		return nil, fmt.Errorf("Failed to append assistant message: %w", err)
	}
	history, err := cs.conversations.History(ctx, key)
	if err != nil {
		history = []types.ChatMessage{reply}
	}
	return &ChatTurn{Reply: reply, History: history}, nil
}

// buildCatalogPrompt is a pure function of profile type, snapshot and the
// incoming message; the greeting branch switches the instruction block, not
// the output-format contract.
func buildCatalogPrompt(profileType string, snapshot []*types.Opportunity, userMessage string) string {
	profileInfo := "Le profil de l'utilisateur est inconnu."
	if strings.TrimSpace(profileType) != "" {
		profileInfo = fmt.Sprintf("L'utilisateur a le profil suivant : %s.", profileType)
	}

	sections := []string{
		"Tu es un assistant expert en opportunités agricoles en Côte d'Ivoire.",
		profileInfo,
		"Voici la liste des opportunités disponibles :",
	}
	for i, opp := range snapshot {
		sections = append(sections, fmt.Sprintf("#%d — %s\n%s", i+1, opp.Title, opp.Description))
	}
	sections = append(sections, "\n\nÀ partir du profil utilisateur :")
	if IsGreeting(userMessage) {
		sections = append(sections,
			"1. Réponds au salut de manière naturelle et amicale\n"+
				"2. Liste les opportunités pertinentes avec le format demandé\n"+
				"3. Encourage l'utilisateur à poser des questions")
	} else {
		sections = append(sections, "Sélectionne et présente uniquement les opportunités pertinentes pour la demande utilisateur")
	}
	sections = append(sections,
		"Format de réponse REQUIS :\n"+
			"**Titre opportunité**  \n"+
			"👉 Description concise (1-2 phrases)\n\n"+
			"Contraintes :\n"+
			"- Toujours garder les titres en gras\n"+
			"- 👉 aligné sous le titre\n"+
			"- 1 saut de ligne entre titre et description\n"+
			"- 2 sauts de ligne entre chaque opportunité\n"+
			"- Ajouter une phrase d'introduction contextuelle avant la liste")
	return strings.Join(sections, "\n\n")
}

func buildOpportunityPrompt(opportunity *types.Opportunity, profileType string, profileCompleted bool) string {
	profileLabel := types.ProfileTypeLabels[profileType]
	if profileLabel == "" {
		profileLabel = profileType
	}
	completion := "incomplet"
	if profileCompleted {
		completion = "complet"
	}
	return fmt.Sprintf(
		"Tu es un assistant pour la plateforme AgroSub. "+
			"L'utilisateur a le profil : %s. "+
			"Le profil est %s. "+
			"Réponds uniquement en te basant sur le résumé suivant de l'opportunité agricole :\n\n%s",
		profileLabel, completion, opportunity.Description,
	)
}

// IsGreeting reports whether a message should take the greeting branch of
// the catalog prompt.
func IsGreeting(message string) bool {
	return greetingPattern.MatchString(message)
}

// collapseNewlines folds runs of newlines into paragraph breaks for
// rendering.
func collapseNewlines(answer string) string {
	return newlineRuns.ReplaceAllString(answer, "\n\n")
}
