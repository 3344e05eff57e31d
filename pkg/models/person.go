package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a gift recipient tracked by a user.
type Person struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Relationship string     `json:"relationship" db:"relationship"`
	Birthday     *time.Time `json:"birthday,omitempty" db:"birthday"`
	Gender       string     `json:"gender,omitempty" db:"gender"`
	City         string     `json:"city,omitempty" db:"city"`
	CountryCode  string     `json:"country_code,omitempty" db:"country_code"`
}

// QuestionnaireResponse holds the loosely-typed answers a user gave about a
// person. Keys follow the questionnaire form (interests, price_range, ...).
type QuestionnaireResponse struct {
	ID        uuid.UUID              `json:"id" db:"id"`
	PersonID  uuid.UUID              `json:"person_id" db:"person_id"`
	Answers   map[string]interface{} `json:"answers" db:"answers"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}
