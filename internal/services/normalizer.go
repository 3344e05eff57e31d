package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/temcen/giftengine/pkg/models"
)

// ErrNoQuestionnaire is returned when a person has no questionnaire response
// to build generator input from.
var ErrNoQuestionnaire = errors.New("no input available: person has no questionnaire response")

// budgetLookup maps normalized free-text price ranges to budget enums. Keys
// are lowercased with currency symbols and whitespace removed.
var budgetLookup = map[string]models.BudgetRange{
	"under20":  models.BudgetUnder20,
	"under_20": models.BudgetUnder20,
	"<20":      models.BudgetUnder20,
	"0-20":     models.BudgetUnder20,
	"20-50":    models.Budget20To50,
	"20_50":    models.Budget20To50,
	"50-100":   models.Budget50To100,
	"50_100":   models.Budget50To100,
	"100-250":  models.Budget100To250,
	"100_250":  models.Budget100To250,
	"250+":     models.Budget250Plus,
	"250plus":  models.Budget250Plus,
	"250_plus": models.Budget250Plus,
	"over250":  models.Budget250Plus,
}

var budgetStripper = strings.NewReplacer(
	"$", "", "£", "", "€", "", "¥", "", "₹", "", "₩", "", " ", "", "\t", "",
)

// ProfileNormalizer turns stored person data into generator input. All
// functions are pure; the clock is passed in.
type ProfileNormalizer struct {
	logger *logrus.Logger
	title  cases.Caser
}

func NewProfileNormalizer(logger *logrus.Logger) *ProfileNormalizer {
	return &ProfileNormalizer{
		logger: logger,
		title:  cases.Title(language.Und),
	}
}

// Normalize builds a profile input from a person and their latest
// questionnaire response. A nil response yields ErrNoQuestionnaire.
func (n *ProfileNormalizer) Normalize(person *models.Person, resp *models.QuestionnaireResponse, now time.Time) (*models.ProfileInput, error) {
	if person == nil {
		return nil, fmt.Errorf("normalize profile: person is required")
	}
	if resp == nil {
		return nil, ErrNoQuestionnaire
	}

	answers := questionnaireAnswers(resp.Answers)

	gender := strings.TrimSpace(person.Gender)
	if gender == "" {
		gender = answers.str("gender")
	}
	if gender == "" {
		gender = models.UnspecifiedGender
	}

	relationship := strings.TrimSpace(person.Relationship)
	if relationship == "" {
		relationship = answers.str("relationship")
	}

	in := &models.ProfileInput{
		RecipientProfile: models.RecipientProfile{
			Relationship:   relationship,
			AgeRange:       AgeRangeFor(person.Birthday, now),
			Gender:         gender,
			Location:       n.Location(person.City, person.CountryCode),
			Interests:      answers.list("interests"),
			FavoriteBrands: answers.list("favorite_brands"),
		},
		GiftingContext: models.GiftingContext{
			BudgetRange:    BudgetRangeFor(answers.str("price_range")),
			GiftPriceFocus: answers.str("gift_price_focus"),
			OccasionType:   answers.str("occasion_type"),
			OccasionDate:   answers.str("occasion_date"),
		},
		StylePersonality: models.StylePersonality{
			PersonalityTraits:     answers.list("personality_traits"),
			GiftFormatPreference:  answers.str("gift_format_preference"),
			SurpriseVsPractical:   answers.str("surprise_vs_practical"),
			WantsIndependentShops: answers.boolean("wants_independent_shops"),
			RestrictionsNotes:     answers.str("restrictions_notes"),
		},
	}

	n.logger.WithFields(logrus.Fields{
		"person_id": person.ID,
		"age_range": in.RecipientProfile.AgeRange,
		"budget":    in.GiftingContext.BudgetRange,
	}).Debug("Normalized questionnaire input")

	return in, nil
}

// Sanitize applies the same defaults Normalize would to a profile input that
// arrived directly over the wire. The input is not modified.
func (n *ProfileNormalizer) Sanitize(in *models.ProfileInput) *models.ProfileInput {
	out := *in
	if !out.RecipientProfile.AgeRange.IsValid() {
		out.RecipientProfile.AgeRange = models.DefaultAge
	}
	if !out.GiftingContext.BudgetRange.IsValid() {
		out.GiftingContext.BudgetRange = BudgetRangeFor(string(out.GiftingContext.BudgetRange))
	}
	if strings.TrimSpace(out.RecipientProfile.Location) == "" {
		out.RecipientProfile.Location = defaultCountryName
	}
	if strings.TrimSpace(out.RecipientProfile.Gender) == "" {
		out.RecipientProfile.Gender = models.UnspecifiedGender
	}
	if out.RecipientProfile.Interests == nil {
		out.RecipientProfile.Interests = []string{}
	}
	if out.StylePersonality.PersonalityTraits == nil {
		out.StylePersonality.PersonalityTraits = []string{}
	}
	return &out
}

// Location renders "City, Country" when both are known, otherwise the country
// name alone. An empty country code means the United States.
func (n *ProfileNormalizer) Location(city, countryCode string) string {
	if strings.TrimSpace(countryCode) == "" {
		countryCode = DefaultCountryCode
	}
	country := CountryName(countryCode)

	city = strings.TrimSpace(city)
	if city == "" {
		return country
	}
	if city == strings.ToLower(city) {
		city = n.title.String(city)
	}
	return city + ", " + country
}

// AgeRangeFor buckets the age reached on now. Birthdays later in the year
// than now have not happened yet.
func AgeRangeFor(birthday *time.Time, now time.Time) models.AgeRange {
	if birthday == nil || birthday.IsZero() {
		return models.DefaultAge
	}

	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() || (now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}

	switch {
	case age < 18:
		return models.AgeUnder18
	case age <= 25:
		return models.Age18To25
	case age <= 35:
		return models.Age26To35
	case age <= 45:
		return models.Age36To45
	case age <= 60:
		return models.Age46To60
	default:
		return models.Age60Plus
	}
}

// BudgetRangeFor maps a questionnaire price range to a budget enum, falling
// back to 50_100.
func BudgetRangeFor(priceRange string) models.BudgetRange {
	key := strings.ToLower(budgetStripper.Replace(priceRange))
	if budget, ok := budgetLookup[key]; ok {
		return budget
	}
	return models.DefaultBudget
}

// questionnaireAnswers reads loosely typed JSON answers.
type questionnaireAnswers map[string]interface{}

func (a questionnaireAnswers) str(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (a questionnaireAnswers) list(key string) []string {
	out := []string{}
	switch v := a[key].(type) {
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func (a questionnaireAnswers) boolean(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}
