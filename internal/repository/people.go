package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/temcen/giftengine/pkg/models"
)

// ErrPersonNotFound is returned when the person does not exist or belongs to
// another user.
var ErrPersonNotFound = errors.New("person not found")

// DatabaseQuerier is satisfied by *pgxpool.Pool and pgxmock pools.
type DatabaseQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PeopleRepository reads people and their questionnaire answers. The tables
// are owned by the main application; this service never writes to them.
type PeopleRepository struct {
	db DatabaseQuerier
}

func NewPeopleRepository(db DatabaseQuerier) *PeopleRepository {
	return &PeopleRepository{db: db}
}

const getPersonQuery = `
	SELECT id, user_id, name, COALESCE(relationship, ''), birthday,
	       COALESCE(gender, ''), COALESCE(city, ''), COALESCE(country_code, '')
	FROM people
	WHERE id = $1 AND user_id = $2`

// GetPerson loads a person owned by userID.
func (r *PeopleRepository) GetPerson(ctx context.Context, personID, userID uuid.UUID) (*models.Person, error) {
	var p models.Person
	err := r.db.QueryRow(ctx, getPersonQuery, personID, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Relationship, &p.Birthday,
		&p.Gender, &p.City, &p.CountryCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to load person: %w", err)
	}
	return &p, nil
}

const latestQuestionnaireQuery = `
	SELECT id, person_id, answers, created_at
	FROM questionnaire_responses
	WHERE person_id = $1
	ORDER BY created_at DESC
	LIMIT 1`

// LatestQuestionnaire returns the most recent questionnaire response for a
// person, or nil when there is none.
func (r *PeopleRepository) LatestQuestionnaire(ctx context.Context, personID uuid.UUID) (*models.QuestionnaireResponse, error) {
	var (
		resp models.QuestionnaireResponse
		raw  []byte
	)
	err := r.db.QueryRow(ctx, latestQuestionnaireQuery, personID).Scan(
		&resp.ID, &resp.PersonID, &raw, &resp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load questionnaire response: %w", err)
	}

	resp.Answers = map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode questionnaire answers: %w", err)
		}
	}
	return &resp, nil
}
