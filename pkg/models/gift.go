package models

// AgeRange buckets a recipient's age.
type AgeRange string

const (
	AgeUnder18 AgeRange = "under_18"
	Age18To25  AgeRange = "18_25"
	Age26To35  AgeRange = "26_35"
	Age36To45  AgeRange = "36_45"
	Age46To60  AgeRange = "46_60"
	Age60Plus  AgeRange = "60_plus"
)

const DefaultAge = Age26To35

var ageRanges = map[AgeRange]bool{
	AgeUnder18: true,
	Age18To25:  true,
	Age26To35:  true,
	Age36To45:  true,
	Age46To60:  true,
	Age60Plus:  true,
}

func (a AgeRange) IsValid() bool {
	return ageRanges[a]
}

// BudgetRange is shared by the gifting context (input constraint) and the
// generated ideas (price band).
type BudgetRange string

const (
	BudgetUnder20  BudgetRange = "under_20"
	Budget20To50   BudgetRange = "20_50"
	Budget50To100  BudgetRange = "50_100"
	Budget100To250 BudgetRange = "100_250"
	Budget250Plus  BudgetRange = "250_plus"
)

const DefaultBudget = Budget50To100

var budgetRanges = map[BudgetRange]bool{
	BudgetUnder20:  true,
	Budget20To50:   true,
	Budget50To100:  true,
	Budget100To250: true,
	Budget250Plus:  true,
}

func (b BudgetRange) IsValid() bool {
	return budgetRanges[b]
}

type GiftType string

const (
	GiftTypeExperience GiftType = "experience"
	GiftTypePhysical   GiftType = "physical"
	GiftTypeMixed      GiftType = "mixed"
)

func (g GiftType) IsValid() bool {
	return g == GiftTypeExperience || g == GiftTypePhysical || g == GiftTypeMixed
}

const UnspecifiedGender = "unspecified"

type RecipientProfile struct {
	Relationship   string   `json:"relationship"`
	AgeRange       AgeRange `json:"age_range"`
	Gender         string   `json:"gender"`
	Location       string   `json:"location"`
	Interests      []string `json:"interests"`
	FavoriteBrands []string `json:"favorite_brands,omitempty"`
}

type GiftingContext struct {
	BudgetRange    BudgetRange `json:"budget_range"`
	GiftPriceFocus string      `json:"gift_price_focus"`
	OccasionType   string      `json:"occasion_type"`
	OccasionDate   string      `json:"occasion_date,omitempty"`
}

type StylePersonality struct {
	PersonalityTraits     []string `json:"personality_traits"`
	GiftFormatPreference  string   `json:"gift_format_preference"`
	SurpriseVsPractical   string   `json:"surprise_vs_practical"`
	WantsIndependentShops bool     `json:"wants_independent_shops"`
	RestrictionsNotes     string   `json:"restrictions_notes,omitempty"`
}

// GiftIdea is a candidate returned by the completion provider, before links
// are attached.
type GiftIdea struct {
	Title             string      `json:"title" validate:"required"`
	Description       string      `json:"description" validate:"required"`
	WhyItFits         string      `json:"why_it_fits"`
	GiftType          GiftType    `json:"gift_type" validate:"required,oneof=experience physical mixed"`
	PriceBand         BudgetRange `json:"price_band" validate:"required,oneof=under_20 20_50 50_100 100_250 250_plus"`
	SearchQueryForWeb string      `json:"search_query_for_web"`
}

type GiftLink struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	SourceDomain string `json:"source_domain"`
}

// EnrichedGiftIdea is what the end user sees. The web search query that
// drove enrichment is deliberately not part of it.
type EnrichedGiftIdea struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	WhyItFits   string      `json:"why_it_fits"`
	GiftType    GiftType    `json:"gift_type"`
	PriceBand   BudgetRange `json:"price_band"`
	Links       []GiftLink  `json:"links"`
}

func NewEnrichedGiftIdea(idea GiftIdea, links []GiftLink) EnrichedGiftIdea {
	if links == nil {
		links = []GiftLink{}
	}
	return EnrichedGiftIdea{
		Title:       idea.Title,
		Description: idea.Description,
		WhyItFits:   idea.WhyItFits,
		GiftType:    idea.GiftType,
		PriceBand:   idea.PriceBand,
		Links:       links,
	}
}

// SearchResult is a single search-mode shop entry.
type SearchResult struct {
	URL               string `json:"url"`
	Title             string `json:"title"`
	Snippet           string `json:"snippet"`
	WhyThisIsRelevant string `json:"why_this_is_relevant"`
}
