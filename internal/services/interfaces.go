package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/temcen/giftengine/pkg/models"
)

// IdeaSource produces gift ideas for a normalized profile.
type IdeaSource interface {
	Generate(ctx context.Context, in *models.ProfileInput) ([]models.GiftIdea, error)
}

// LinkSource attaches purchase links to ideas. It never fails.
type LinkSource interface {
	Enrich(ctx context.Context, ideas []models.GiftIdea, wantsIndependent bool) []models.EnrichedGiftIdea
}

// ShopSearcher runs search mode.
type ShopSearcher interface {
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
}

// PeopleStore reads stored recipients and questionnaire answers.
type PeopleStore interface {
	GetPerson(ctx context.Context, personID, userID uuid.UUID) (*models.Person, error)
	LatestQuestionnaire(ctx context.Context, personID uuid.UUID) (*models.QuestionnaireResponse, error)
}

// GiftEngineInterface is what the HTTP layer needs from the engine.
type GiftEngineInterface interface {
	Dispatch(ctx context.Context, session models.SessionContext, input models.GiftEngineInput) (models.GiftEngineResult, error)
	GenerateForPerson(ctx context.Context, session models.SessionContext, personID, userID uuid.UUID) (*models.ProfileResult, error)
	PreviewInput(ctx context.Context, personID, userID uuid.UUID) (*models.InputPreview, error)
}
