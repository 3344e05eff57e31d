package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/messaging"
	"github.com/temcen/giftengine/pkg/models"
)

// ErrPeopleUnavailable is returned by person-based operations when no
// database is configured.
var ErrPeopleUnavailable = errors.New("people store is not configured")

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// GiftEngine routes a request to the profile or search flow. It implements
// models.InputVisitor, so every request variant has exactly one handler.
type GiftEngine struct {
	normalizer *ProfileNormalizer
	generator  IdeaSource
	enricher   LinkSource
	shops      ShopSearcher
	people     PeopleStore
	publisher  messaging.EventPublisher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewGiftEngine wires the pipeline stages. people may be nil, which disables
// the person-based operations.
func NewGiftEngine(
	normalizer *ProfileNormalizer,
	generator IdeaSource,
	enricher LinkSource,
	shops ShopSearcher,
	people PeopleStore,
	publisher messaging.EventPublisher,
	logger *logrus.Logger,
) *GiftEngine {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &GiftEngine{
		normalizer: normalizer,
		generator:  generator,
		enricher:   enricher,
		shops:      shops,
		people:     people,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Dispatch runs the flow selected by the input's variant.
func (e *GiftEngine) Dispatch(ctx context.Context, session models.SessionContext, input models.GiftEngineInput) (models.GiftEngineResult, error) {
	start := time.Now()
	defer observeStage(stageDispatch, start)

	result, err := input.Accept(ctx, e)
	e.record(ctx, session, input.Mode(), result, err, start)
	return result, err
}

func (e *GiftEngine) VisitProfile(ctx context.Context, in *models.ProfileInput) (models.GiftEngineResult, error) {
	result, err := e.runProfile(ctx, e.normalizer.Sanitize(in))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *GiftEngine) VisitSearch(ctx context.Context, in *models.SearchInput) (models.GiftEngineResult, error) {
	result, err := e.shops.Search(ctx, in.SearchQuery)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateForPerson normalizes a stored person's latest questionnaire and
// runs the profile flow on it.
func (e *GiftEngine) GenerateForPerson(ctx context.Context, session models.SessionContext, personID, userID uuid.UUID) (*models.ProfileResult, error) {
	start := time.Now()

	_, in, err := e.loadInput(ctx, personID, userID)
	if err != nil {
		e.record(ctx, session, models.ModeProfile, nil, err, start)
		return nil, err
	}

	result, err := e.runProfile(ctx, in)
	if err != nil {
		e.record(ctx, session, models.ModeProfile, nil, err, start)
		return nil, err
	}

	e.record(ctx, session, models.ModeProfile, result, nil, start)
	return result, nil
}

// PreviewInput returns the normalized input for a stored person without
// calling any provider.
func (e *GiftEngine) PreviewInput(ctx context.Context, personID, userID uuid.UUID) (*models.InputPreview, error) {
	person, in, err := e.loadInput(ctx, personID, userID)
	if err != nil {
		return nil, err
	}
	code, symbol := Currency(countryOrDefault(person.CountryCode))

	return &models.InputPreview{
		Input:          in,
		CurrencyCode:   code,
		CurrencySymbol: symbol,
	}, nil
}

func (e *GiftEngine) loadInput(ctx context.Context, personID, userID uuid.UUID) (*models.Person, *models.ProfileInput, error) {
	if e.people == nil {
		return nil, nil, ErrPeopleUnavailable
	}

	person, err := e.people.GetPerson(ctx, personID, userID)
	if err != nil {
		return nil, nil, err
	}

	resp, err := e.people.LatestQuestionnaire(ctx, personID)
	if err != nil {
		return nil, nil, err
	}

	in, err := e.normalizer.Normalize(person, resp, e.now())
	if err != nil {
		return nil, nil, err
	}
	return person, in, nil
}

// runProfile generates then enriches. Any generation failure aborts the
// request; enrichment failures only cost links.
func (e *GiftEngine) runProfile(ctx context.Context, in *models.ProfileInput) (*models.ProfileResult, error) {
	ideas, err := e.generator.Generate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("generate gift ideas: %w", err)
	}

	enriched := e.enricher.Enrich(ctx, ideas, in.StylePersonality.WantsIndependentShops)
	return models.NewProfileResult(enriched), nil
}

func (e *GiftEngine) record(ctx context.Context, session models.SessionContext, mode models.Mode, result models.GiftEngineResult, err error, start time.Time) {
	latency := time.Since(start)

	event := models.PipelineEvent{
		ID:        uuid.New(),
		Type:      messaging.EventGiftEngineRequest,
		Session:   session,
		Mode:      mode,
		Outcome:   outcomeSuccess,
		LatencyMs: latency.Milliseconds(),
		Timestamp: e.now(),
	}
	if result != nil {
		event.ItemCount = result.ItemCount()
		itemsReturned.WithLabelValues(string(mode)).Observe(float64(event.ItemCount))
	}

	entry := e.logger.WithFields(logrus.Fields{
		"session_id": session.SessionID,
		"request_id": session.RequestID,
		"mode":       mode,
		"items":      event.ItemCount,
		"latency":    latency,
	})

	if err != nil {
		event.Outcome = outcomeError
		event.Error = err.Error()
		entry.WithError(err).Error("Gift engine request failed")
	} else {
		entry.Info("Gift engine request completed")
	}
	dispatchTotal.WithLabelValues(string(mode), event.Outcome).Inc()

	if pubErr := e.publisher.Publish(context.WithoutCancel(ctx), event); pubErr != nil {
		e.logger.WithError(pubErr).WithField("event_id", event.ID).Warn("Failed to record pipeline event")
	}
}

func countryOrDefault(code string) string {
	if code == "" {
		return DefaultCountryCode
	}
	return code
}
