package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/internal/providers/search"
	"github.com/temcen/giftengine/pkg/models"
)

// UnknownSourceDomain is reported for links whose URL has no parsable host.
const UnknownSourceDomain = "unknown"

const maxLinksPerIdea = 3

// LinkEnricher attaches purchase links to generated ideas, one search per
// idea. A failed search leaves that idea with no links and never fails the
// batch.
type LinkEnricher struct {
	client      search.Client
	maxLinks    int
	concurrency int
	qualifier   string
	logger      *logrus.Logger
}

func NewLinkEnricher(client search.Client, searchCfg config.EnrichmentSearchConfig, engineCfg config.EngineConfig, logger *logrus.Logger) *LinkEnricher {
	maxLinks := searchCfg.MaxResults
	if maxLinks <= 0 || maxLinks > maxLinksPerIdea {
		maxLinks = maxLinksPerIdea
	}
	concurrency := engineCfg.EnrichmentConcurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	return &LinkEnricher{
		client:      client,
		maxLinks:    maxLinks,
		concurrency: concurrency,
		qualifier:   strings.TrimSpace(searchCfg.IndependentQualifier),
		logger:      logger,
	}
}

// Enrich returns one enriched idea per input idea, in input order.
func (e *LinkEnricher) Enrich(ctx context.Context, ideas []models.GiftIdea, wantsIndependent bool) []models.EnrichedGiftIdea {
	defer observeStage(stageEnrich, time.Now())

	results := make([]models.EnrichedGiftIdea, len(ideas))

	// Workers never return an error, so Wait only joins.
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := range ideas {
		g.Go(func() error {
			links := e.linksFor(ctx, i, ideas[i], wantsIndependent)
			results[i] = models.NewEnrichedGiftIdea(ideas[i], links)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// SearchQuery builds the web query for an idea.
func (e *LinkEnricher) SearchQuery(idea models.GiftIdea, wantsIndependent bool) string {
	query := strings.TrimSpace(idea.SearchQueryForWeb)
	if query == "" {
		query = strings.TrimSpace(idea.Title)
	}
	if wantsIndependent && e.qualifier != "" {
		query = query + " " + e.qualifier
	}
	return query
}

func (e *LinkEnricher) linksFor(ctx context.Context, index int, idea models.GiftIdea, wantsIndependent bool) (links []models.GiftLink) {
	query := e.SearchQuery(idea, wantsIndependent)
	entry := e.logger.WithFields(logrus.Fields{
		"idea_index": index,
		"query":      query,
	})

	defer func() {
		if r := recover(); r != nil {
			enrichmentFailures.Inc()
			entry.WithField("panic", r).Warn("Recovered panic while enriching idea")
			links = []models.GiftLink{}
		}
	}()

	if query == "" {
		return []models.GiftLink{}
	}

	results, err := e.client.Search(ctx, query, search.Options{MaxResults: e.maxLinks})
	if err != nil {
		enrichmentFailures.Inc()
		entry.WithError(err).Warn("Link search failed, continuing without links")
		return []models.GiftLink{}
	}

	links = make([]models.GiftLink, 0, e.maxLinks)
	for _, r := range results {
		if len(links) == e.maxLinks {
			break
		}
		links = append(links, models.GiftLink{
			URL:          r.URL,
			Title:        r.Title,
			Snippet:      r.Snippet,
			SourceDomain: SourceDomain(r.URL),
		})
	}
	return links
}

// SourceDomain returns the hostname of rawURL, or UnknownSourceDomain when it
// cannot be determined.
func SourceDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return UnknownSourceDomain
	}
	if host := u.Hostname(); host != "" {
		return host
	}
	return UnknownSourceDomain
}
