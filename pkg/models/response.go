package models

const (
	FlowProfile = "profile"
	FlowSearch  = "search"
)

// GiftEngineResult is either *ProfileResult or *SearchResponse.
type GiftEngineResult interface {
	ItemCount() int
}

type ProfileResult struct {
	Flow      string             `json:"flow"`
	GiftIdeas []EnrichedGiftIdea `json:"gift_ideas"`
}

func NewProfileResult(ideas []EnrichedGiftIdea) *ProfileResult {
	if ideas == nil {
		ideas = []EnrichedGiftIdea{}
	}
	return &ProfileResult{Flow: FlowProfile, GiftIdeas: ideas}
}

func (r *ProfileResult) ItemCount() int { return len(r.GiftIdeas) }

type SearchResponse struct {
	Flow        string         `json:"flow"`
	SearchQuery string         `json:"search_query"`
	Shops       []SearchResult `json:"shops"`
	Message     string         `json:"message,omitempty"`
}

func NewSearchResponse(query string, shops []SearchResult, message string) *SearchResponse {
	if shops == nil {
		shops = []SearchResult{}
	}
	return &SearchResponse{Flow: FlowSearch, SearchQuery: query, Shops: shops, Message: message}
}

func (r *SearchResponse) ItemCount() int { return len(r.Shops) }

// ErrorResponse is the envelope for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// InputPreview is the normalized input for a stored person, with the
// currency of their country for display.
type InputPreview struct {
	Input          *ProfileInput `json:"input"`
	CurrencyCode   string        `json:"currency_code"`
	CurrencySymbol string        `json:"currency_symbol"`
}
