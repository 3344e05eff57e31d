package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/internal/database"
	"github.com/temcen/giftengine/internal/messaging"
	"github.com/temcen/giftengine/internal/providers/llm"
	"github.com/temcen/giftengine/internal/providers/search"
	"github.com/temcen/giftengine/internal/repository"
)

type Services struct {
	Auth       *AuthService
	Health     *HealthService
	RateLimit  *RateLimitService
	Publisher  messaging.EventPublisher
	Normalizer *ProfileNormalizer
	Generator  *IdeaGenerator
	Enricher   *LinkEnricher
	ShopSearch *ShopSearchService
	Engine     *GiftEngine
}

func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	chatModel, err := llm.NewChatModel(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}

	authService := NewAuthService(cfg.Auth, logger)
	healthService := NewHealthService(logger, db)
	rateLimitService := NewRateLimitService(cfg.RateLimit, logger, db.Redis)
	publisher := messaging.NewEventPublisher(cfg, logger)

	normalizer := NewProfileNormalizer(logger)
	generator := NewIdeaGenerator(chatModel, cfg.LLM, cfg.Engine, logger)
	enricher := NewLinkEnricher(search.NewTavilyClient(cfg.Search.Enrichment, logger), cfg.Search.Enrichment, cfg.Engine, logger)
	shopSearch := NewShopSearchService(search.NewExaClient(cfg.Search.Discovery, logger), db.Redis, cfg.Search.Discovery, logger)

	var people PeopleStore
	if db.PG != nil {
		people = repository.NewPeopleRepository(db.PG)
	}

	engine := NewGiftEngine(normalizer, generator, enricher, shopSearch, people, publisher, logger)

	return &Services{
		Auth:       authService,
		Health:     healthService,
		RateLimit:  rateLimitService,
		Publisher:  publisher,
		Normalizer: normalizer,
		Generator:  generator,
		Enricher:   enricher,
		ShopSearch: shopSearch,
		Engine:     engine,
	}, nil
}

// Close flushes pending events.
func (s *Services) Close() error {
	return s.Publisher.Close()
}
