package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/normalization"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyDocument = errors.New("document contains no extractable text")

// summaryFieldAliases maps the label the model used in its summary to the
// canonical field. The summaries come back in French with unstable labels.
var summaryFieldAliases = map[string]string{
	"titre":        "title",
	"type":         "type",
	"catégorie":    "type",
	"organisateur": "organization",
	"porteur":      "organization",
	"description":  "description",
	"date limite":  "deadline",
	"échéance":     "deadline",
	"durée":        "duration",
	"délai":        "duration",
	"localisation": "location",
	"zone":         "location",
	"critères":     "eligibility",
	"éligibilité":  "eligibility",
	"avantages":    "benefits",
}

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "mars": time.March,
	"avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "septembre": time.September,
	"octobre": time.October, "novembre": time.November, "décembre": time.December,
}

// IngestionService turns an uploaded call-for-projects PDF into a published
// catalog entry: extract text, summarize it, map the summary fields onto an
// opportunity row.
type IngestionService interface {
	IngestPDF(ctx context.Context, authorID uuid.UUID, filename string, data []byte) (*types.Opportunity, error)
}

type ingestionService struct {
	db              *gorm.DB
	log             *logger.Logger
	opportunityRepo repos.OpportunityRepo
	bucket          BucketService
	ai              OpenAIClient
	model           string
}

func NewIngestionService(
	db *gorm.DB,
	log *logger.Logger,
	opportunityRepo repos.OpportunityRepo,
	bucket BucketService,
	ai OpenAIClient,
	model string,
) IngestionService {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &ingestionService{
		db:              db,
		log:             log.With("service", "IngestionService"),
		opportunityRepo: opportunityRepo,
		bucket:          bucket,
		ai:              ai,
		model:           model,
	}
}

func (is *ingestionService) IngestPDF(ctx context.Context, authorID uuid.UUID, filename string, data []byte) (*types.Opportunity, error) {
	fullText, err := extractPDFText(data)
	if err != nil {
		return nil, fmt.Errorf("Failed to extract PDF text: %w", err)
	}
	if strings.TrimSpace(fullText) == "" {
		return nil, ErrEmptyDocument
	}

	summary, err := is.summarize(ctx, fullText)
	if err != nil {
		return nil, fmt.Errorf("Failed to summarize document: %w", err)
	}
	fields := parseSummary(summary)

	now := time.Now()
	opportunity := &types.Opportunity{
		Title:               fields["title"],
		Type:                fields["type"],
		Organization:        fields["organization"],
		Description:         fields["description"],
		EligibilityCriteria: fields["eligibility"],
		Benefits:            fields["benefits"],
		Deadline:            parseDeadline(fields["deadline"], now),
		Status:              types.OpportunityStatusPublished,
		AuthorID:            authorID,
		FullText:            &fullText,
		IAGeneratedAt:       &now,
	}
	if opportunity.Title == "" {
		opportunity.Title = strings.TrimSuffix(filename, ".pdf")
	}
	if opportunity.Type == "" {
		opportunity.Type = types.OpportunityTypeSubvention
	}
	if opportunity.Organization == "" {
		opportunity.Organization = "Non précisé"
	}
	if opportunity.Description == "" {
		opportunity.Description = summary
	}

	if is.bucket != nil {
		key := fmt.Sprintf("documents/%s/%s", authorID, filename)
		url, err := is.bucket.Upload(ctx, key, "application/pdf", data)
		if err != nil {
			is.log.Warn("Failed to archive source PDF", "filename", filename, "error", err)
		} else {
			opportunity.PDFURL = &url
		}
	}

	created, err := is.opportunityRepo.Create(ctx, nil, []*types.Opportunity{opportunity})
	if err != nil {
		return nil, fmt.Errorf("Failed to create opportunity from document: %w", err)
	}
	is.log.Info("Ingested opportunity from PDF", "title", created[0].Title, "id", created[0].ID)
	return created[0], nil
}

func (is *ingestionService) summarize(ctx context.Context, fullText string) (string, error) {
	prompt := "Tu es un assistant qui analyse des appels à projets agricoles. " +
		"Résume le document suivant sous forme de champs, un par ligne, au format « Champ : valeur ». " +
		"Champs attendus : Titre, Type, Organisateur, Description, Date limite, Localisation, Critères, Avantages.\n\n" +
		fullText
	return is.ai.ChatCompletion(ctx, ChatCompletionRequest{
		Model:       is.model,
		Temperature: 0.2,
		Messages:    []types.ChatMessage{{Role: types.ChatRoleUser, Content: prompt}},
	})
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// parseSummary walks the "Label : value" lines of a summary and resolves the
// labels through the alias table. Unknown labels are dropped.
func parseSummary(summary string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		separator := strings.Index(line, ":")
		if separator < 0 {
			continue
		}
		label := normalization.ParseInputString(strings.Trim(line[:separator], " *#"))
		value := strings.TrimSpace(line[separator+1:])
		if value == "" {
			continue
		}
		canonical, ok := summaryFieldAliases[label]
		if !ok {
			continue
		}
		if _, seen := fields[canonical]; !seen {
			fields[canonical] = value
		}
	}
	return fields
}

// parseDeadline accepts the date shapes the summaries actually produce;
// anything unparseable falls back to thirty days out.
func parseDeadline(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	fallback := now.AddDate(0, 0, 30)
	if raw == "" {
		return fallback
	}

	for _, layout := range []string{"02/01/2006", "2006-01-02", "02-01-2006", "02.01.2006"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}

	// "15 mars 2026" style.
	parts := strings.Fields(normalization.ParseInputString(raw))
	if len(parts) == 3 {
		month, ok := frenchMonths[parts[1]]
		if ok {
			var day, year int
			if _, err := fmt.Sscanf(parts[0]+" "+parts[2], "%d %d", &day, &year); err == nil && day >= 1 && day <= 31 {
				return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			}
		}
	}
	return fallback
}
