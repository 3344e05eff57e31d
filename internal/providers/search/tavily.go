package search

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
)

// TavilyClient backs link enrichment.
type TavilyClient struct {
	httpClient
	apiKey      string
	maxResults  int
	searchDepth string
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func NewTavilyClient(cfg config.EnrichmentSearchConfig, logger *logrus.Logger) *TavilyClient {
	depth := cfg.SearchDepth
	if depth == "" {
		depth = "basic"
	}
	return &TavilyClient{
		httpClient:  newHTTPClient("tavily", cfg.BaseURL, cfg.Timeout, cfg.RequestsPerSecond, logger),
		apiKey:      cfg.APIKey,
		maxResults:  cfg.MaxResults,
		searchDepth: depth,
	}
}

func (c *TavilyClient) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = c.maxResults
	}

	var resp tavilyResponse
	err := c.postJSON(ctx, "/search", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, tavilyRequest{
		Query:       query,
		MaxResults:  limit,
		SearchDepth: c.searchDepth,
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
