package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/internal/providers/search"
	"github.com/temcen/giftengine/pkg/models"
)

const (
	maxShopResults      = 10
	maxSnippetLength    = 200
	snippetEllipsis     = "..."
	NoShopsFoundMessage = "No clearly relevant shops were found for this search. Try a slightly broader search."
)

// ShopSearchService runs search mode: a free-text query against the
// discovery provider, with no idea generation.
type ShopSearchService struct {
	client     search.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	numResults int
	logger     *logrus.Logger
}

// NewShopSearchService accepts a nil cache, in which case every query goes to
// the provider.
func NewShopSearchService(client search.Client, cache *redis.Client, cfg config.DiscoverySearchConfig, logger *logrus.Logger) *ShopSearchService {
	numResults := cfg.NumResults
	if numResults <= 0 || numResults > maxShopResults {
		numResults = maxShopResults
	}
	return &ShopSearchService{
		client:     client,
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		numResults: numResults,
		logger:     logger,
	}
}

// Search returns up to ten shops for query. An empty query returns the
// no-results shape without calling the provider. The original query is
// echoed back.
func (s *ShopSearchService) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return models.NewSearchResponse(query, nil, NoShopsFoundMessage), nil
	}

	cacheKey := s.cacheKey(trimmed)
	if shops, ok := s.fromCache(ctx, cacheKey); ok {
		for i := range shops {
			shops[i].WhyThisIsRelevant = relevanceFor(trimmed)
		}
		return s.response(query, shops), nil
	}

	start := time.Now()
	results, err := s.client.Search(ctx, trimmed, search.Options{MaxResults: s.numResults})
	observeStage(stageDiscover, start)
	if err != nil {
		return nil, fmt.Errorf("shop search failed: %w", err)
	}

	shops := make([]models.SearchResult, 0, len(results))
	var topScore float64
	for _, r := range results {
		if len(shops) == s.numResults {
			break
		}
		if r.Score > topScore {
			topScore = r.Score
		}
		shops = append(shops, models.SearchResult{
			URL:               r.URL,
			Title:             r.Title,
			Snippet:           TruncateSnippet(r.Snippet),
			WhyThisIsRelevant: relevanceFor(trimmed),
		})
	}

	s.logger.WithFields(logrus.Fields{
		"query":     trimmed,
		"results":   len(shops),
		"top_score": topScore,
	}).Debug("Shop search completed")

	s.toCache(ctx, cacheKey, shops)

	return s.response(query, shops), nil
}

func (s *ShopSearchService) response(query string, shops []models.SearchResult) *models.SearchResponse {
	if len(shops) == 0 {
		return models.NewSearchResponse(query, shops, NoShopsFoundMessage)
	}
	return models.NewSearchResponse(query, shops, "")
}

func (s *ShopSearchService) cacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "shop_search:" + hex.EncodeToString(sum[:])
}

func (s *ShopSearchService) fromCache(ctx context.Context, key string) ([]models.SearchResult, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Warn("Shop search cache read failed")
		}
		searchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var shops []models.SearchResult
	if err := json.Unmarshal(data, &shops); err != nil {
		s.logger.WithError(err).Warn("Discarding unreadable shop search cache entry")
		searchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	searchCacheTotal.WithLabelValues("hit").Inc()
	return shops, true
}

func (s *ShopSearchService) toCache(ctx context.Context, key string, shops []models.SearchResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(shops)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Shop search cache write failed")
	}
}

// TruncateSnippet shortens text longer than 200 characters to its first 200
// characters followed by "...".
func TruncateSnippet(text string) string {
	if utf8.RuneCountInString(text) <= maxSnippetLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxSnippetLength]) + snippetEllipsis
}

func relevanceFor(query string) string {
	return fmt.Sprintf("Matches your search for %q.", query)
}
