package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/pkg/models"
)

// ErrGenerationFailed wraps completion provider failures.
var ErrGenerationFailed = errors.New("gift idea generation failed")

// GenerationParseError means the completion could not be read as a list of
// gift ideas. Raw keeps the completion text for diagnostics.
type GenerationParseError struct {
	Raw string
	Err error
}

func (e *GenerationParseError) Error() string {
	return fmt.Sprintf("failed to parse gift ideas from completion: %v", e.Err)
}

func (e *GenerationParseError) Unwrap() error {
	return e.Err
}

const systemInstruction = "You are a thoughtful gift recommendation assistant. Always respond with valid JSON only."

const ideaPromptTemplate = `Suggest exactly {{.Count}} gift ideas for the recipient described below.

Recipient and context:
{{.InputJSON}}

Rules:
- Every idea must fit the budget_range "{{.Budget}}"{{if .PriceFocus}} and the price focus "{{.PriceFocus}}"{{end}}.
{{- if .Independent}}
- Prioritize small, independent makers and shops over large chains and marketplaces.
{{- end}}
{{- if .Restrictions}}
- Respect these restrictions: {{.Restrictions}}
{{- end}}
- search_query_for_web is a short web search query that would find where to buy the idea.

Respond with a JSON array of {{.Count}} objects, each with exactly these fields:
"title", "description", "why_it_fits", "gift_type" (one of "experience", "physical", "mixed"),
"price_band" (one of "under_20", "20_50", "50_100", "100_250", "250_plus"), "search_query_for_web".
`

type promptData struct {
	Count        int
	InputJSON    string
	Budget       models.BudgetRange
	PriceFocus   string
	Independent  bool
	Restrictions string
}

// IdeaGenerator asks the completion provider for gift ideas and reads them
// back from its free-form answer.
type IdeaGenerator struct {
	chatModel   model.BaseChatModel
	temperature float32
	timeout     time.Duration
	count       int
	strict      bool
	prompt      *template.Template
	validate    *validator.Validate
	logger      *logrus.Logger
}

func NewIdeaGenerator(chatModel model.BaseChatModel, llmCfg config.LLMConfig, engineCfg config.EngineConfig, logger *logrus.Logger) *IdeaGenerator {
	count := engineCfg.IdeaCount
	if count <= 0 {
		count = 5
	}
	return &IdeaGenerator{
		chatModel:   chatModel,
		temperature: llmCfg.Temperature,
		timeout:     llmCfg.Timeout,
		count:       count,
		strict:      engineCfg.StrictValidation,
		prompt:      template.Must(template.New("gift_ideas").Parse(ideaPromptTemplate)),
		validate:    validator.New(),
		logger:      logger,
	}
}

// Generate returns up to the configured number of ideas in the order the
// model produced them. Fewer ideas than requested is not an error.
func (g *IdeaGenerator) Generate(ctx context.Context, in *models.ProfileInput) ([]models.GiftIdea, error) {
	defer observeStage(stageGenerate, time.Now())

	prompt, err := g.BuildPrompt(in)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemInstruction),
		schema.UserMessage(prompt),
	}, model.WithTemperature(g.temperature))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}

	ideas, err := ParseIdeas(resp.Content)
	if err != nil {
		g.logger.WithError(err).WithField("completion_length", len(resp.Content)).Error("Failed to parse completion")
		return nil, err
	}

	ideas, err = g.checkIdeas(ideas, in.GiftingContext.BudgetRange)
	if err != nil {
		return nil, &GenerationParseError{Raw: resp.Content, Err: err}
	}

	g.logger.WithFields(logrus.Fields{
		"requested": g.count,
		"received":  len(ideas),
	}).Debug("Generated gift ideas")

	return ideas, nil
}

// BuildPrompt renders the user instruction for a profile.
func (g *IdeaGenerator) BuildPrompt(in *models.ProfileInput) (string, error) {
	inputJSON, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal generator input: %w", err)
	}

	var buf bytes.Buffer
	err = g.prompt.Execute(&buf, promptData{
		Count:        g.count,
		InputJSON:    string(inputJSON),
		Budget:       in.GiftingContext.BudgetRange,
		PriceFocus:   in.GiftingContext.GiftPriceFocus,
		Independent:  in.StylePersonality.WantsIndependentShops,
		Restrictions: in.StylePersonality.RestrictionsNotes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// ParseIdeas reads a JSON array of ideas from a completion. The whole text is
// tried first, then a decode from each '[' in turn, so prose, code fences and
// stray brackets around the array are tolerated. The first non-empty array of
// objects wins.
func ParseIdeas(raw string) ([]models.GiftIdea, error) {
	var ideas []models.GiftIdea

	strictErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &ideas)
	if strictErr == nil {
		return ideas, nil
	}

	var empty []models.GiftIdea
	lastErr := fmt.Errorf("no JSON array found: %w", strictErr)
	for offset := 0; ; {
		i := strings.IndexByte(raw[offset:], '[')
		if i < 0 {
			break
		}
		start := offset + i
		offset = start + 1

		var candidate []models.GiftIdea
		if err := json.NewDecoder(strings.NewReader(raw[start:])).Decode(&candidate); err != nil {
			lastErr = err
			continue
		}
		if len(candidate) > 0 {
			return candidate, nil
		}
		if empty == nil {
			empty = candidate
		}
	}

	if empty != nil {
		return empty, nil
	}
	return nil, &GenerationParseError{Raw: raw, Err: lastErr}
}

// checkIdeas enforces field validity and the idea cap. In lenient mode enum
// fields are coerced and ideas that still fail are dropped; in strict mode
// any invalid idea is an error. Zero surviving ideas is always an error.
func (g *IdeaGenerator) checkIdeas(ideas []models.GiftIdea, budget models.BudgetRange) ([]models.GiftIdea, error) {
	valid := make([]models.GiftIdea, 0, len(ideas))
	for i, idea := range ideas {
		if !g.strict {
			idea = coerceIdea(idea, budget)
		}
		if err := g.validate.Struct(idea); err != nil {
			if g.strict {
				return nil, fmt.Errorf("idea %d is invalid: %w", i, err)
			}
			g.logger.WithError(err).WithField("index", i).Warn("Dropping invalid gift idea")
			continue
		}
		valid = append(valid, idea)
	}

	if len(valid) == 0 {
		return nil, errors.New("completion contained no usable gift ideas")
	}
	if len(valid) > g.count {
		valid = valid[:g.count]
	}
	return valid, nil
}

func coerceIdea(idea models.GiftIdea, budget models.BudgetRange) models.GiftIdea {
	idea.Title = strings.TrimSpace(idea.Title)
	idea.Description = strings.TrimSpace(idea.Description)

	idea.GiftType = models.GiftType(strings.ToLower(strings.TrimSpace(string(idea.GiftType))))
	if !idea.GiftType.IsValid() {
		idea.GiftType = models.GiftTypeMixed
	}

	key := strings.ToLower(budgetStripper.Replace(string(idea.PriceBand)))
	band, ok := budgetLookup[key]
	if !ok {
		band = budget
	}
	if !band.IsValid() {
		band = models.DefaultBudget
	}
	idea.PriceBand = band

	return idea
}
