package search

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
)

// ExaClient backs search mode.
type ExaClient struct {
	httpClient
	apiKey        string
	numResults    int
	useAutoprompt bool
}

type exaRequest struct {
	Query         string      `json:"query"`
	NumResults    int         `json:"numResults"`
	UseAutoprompt bool        `json:"useAutoprompt"`
	Contents      exaContents `json:"contents"`
}

type exaContents struct {
	Text exaText `json:"text"`
}

type exaText struct {
	MaxCharacters int `json:"maxCharacters"`
}

type exaResponse struct {
	Results []struct {
		Title      string   `json:"title"`
		URL        string   `json:"url"`
		Text       string   `json:"text"`
		Highlights []string `json:"highlights"`
		Score      float64  `json:"score"`
	} `json:"results"`
}

func NewExaClient(cfg config.DiscoverySearchConfig, logger *logrus.Logger) *ExaClient {
	return &ExaClient{
		httpClient:    newHTTPClient("exa", cfg.BaseURL, cfg.Timeout, cfg.RequestsPerSecond, logger),
		apiKey:        cfg.APIKey,
		numResults:    cfg.NumResults,
		useAutoprompt: cfg.UseAutoprompt,
	}
}

func (c *ExaClient) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = c.numResults
	}

	var resp exaResponse
	err := c.postJSON(ctx, "/search", map[string]string{
		"x-api-key": c.apiKey,
	}, exaRequest{
		Query:         query,
		NumResults:    limit,
		UseAutoprompt: c.useAutoprompt,
		Contents:      exaContents{Text: exaText{MaxCharacters: 1000}},
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		snippet := r.Text
		if snippet == "" && len(r.Highlights) > 0 {
			snippet = r.Highlights[0]
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
			Score:   r.Score,
		})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
