package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/internal/providers/search"
	"github.com/temcen/giftengine/internal/repository"
	"github.com/temcen/giftengine/pkg/models"
)

// Mock people store for testing
type MockPeopleStore struct {
	mock.Mock
}

func (m *MockPeopleStore) GetPerson(ctx context.Context, personID, userID uuid.UUID) (*models.Person, error) {
	args := m.Called(ctx, personID, userID)
	if p := args.Get(0); p != nil {
		return p.(*models.Person), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPeopleStore) LatestQuestionnaire(ctx context.Context, personID uuid.UUID) (*models.QuestionnaireResponse, error) {
	args := m.Called(ctx, personID)
	if r := args.Get(0); r != nil {
		return r.(*models.QuestionnaireResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.PipelineEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.PipelineEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type engineFixture struct {
	engine    *GiftEngine
	chatModel *MockChatModel
	links     *MockSearchClient
	shops     *MockSearchClient
	people    *MockPeopleStore
	events    *recordingPublisher
}

func newEngineFixture(withPeople bool) *engineFixture {
	f := &engineFixture{
		chatModel: &MockChatModel{},
		links:     &MockSearchClient{},
		shops:     &MockSearchClient{},
		people:    &MockPeopleStore{},
		events:    &recordingPublisher{},
	}
	logger := newTestLogger()
	engineCfg := config.EngineConfig{IdeaCount: 5, EnrichmentConcurrency: 5}

	var people PeopleStore
	if withPeople {
		people = f.people
	}

	f.engine = NewGiftEngine(
		NewProfileNormalizer(logger),
		NewIdeaGenerator(f.chatModel, config.LLMConfig{Temperature: 0.8, Timeout: time.Second}, engineCfg, logger),
		NewLinkEnricher(f.links, config.EnrichmentSearchConfig{MaxResults: 3, IndependentQualifier: "independent gift shop UK"}, engineCfg, logger),
		NewShopSearchService(f.shops, nil, config.DiscoverySearchConfig{NumResults: 10}, logger),
		people,
		f.events,
		logger,
	)
	f.engine.now = func() time.Time { return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC) }
	return f
}

var testSession = models.SessionContext{SessionID: "sess-1", RequestID: "req-1", ClientIP: "203.0.113.7"}

func TestGiftEngine_DispatchProfile(t *testing.T) {
	f := newEngineFixture(false)
	f.chatModel.On("Generate", mock.Anything, mock.Anything).Return(completion("Here you go:\n"+fiveIdeasJSON), nil).Once()
	f.links.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]search.Result{
		{Title: "Maker", URL: "https://maker.example.co.uk/item", Snippet: "Handmade"},
	}, nil)

	result, err := f.engine.Dispatch(context.Background(), testSession, testProfileInput())
	require.NoError(t, err)

	profile, ok := result.(*models.ProfileResult)
	require.True(t, ok)
	assert.Equal(t, models.FlowProfile, profile.Flow)
	require.Len(t, profile.GiftIdeas, 5)
	for _, idea := range profile.GiftIdeas {
		assert.LessOrEqual(t, len(idea.Links), 3)
		assert.Equal(t, "maker.example.co.uk", idea.Links[0].SourceDomain)
	}

	f.shops.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, "success", f.events.events[0].Outcome)
	assert.Equal(t, 5, f.events.events[0].ItemCount)
	assert.Equal(t, "sess-1", f.events.events[0].Session.SessionID)
}

func TestGiftEngine_DispatchProfileGenerationFailure(t *testing.T) {
	f := newEngineFixture(false)
	f.chatModel.On("Generate", mock.Anything, mock.Anything).Return(completion("no ideas today"), nil).Once()

	result, err := f.engine.Dispatch(context.Background(), testSession, testProfileInput())
	assert.Nil(t, result)

	var parseErr *GenerationParseError
	assert.ErrorAs(t, err, &parseErr)
	f.links.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "error", f.events.events[0].Outcome)
	assert.NotEmpty(t, f.events.events[0].Error)
}

func TestGiftEngine_DispatchProfileSanitizesInput(t *testing.T) {
	f := newEngineFixture(false)
	f.chatModel.On("Generate", mock.Anything, mock.Anything).Return(completion(fiveIdeasJSON), nil).Once()
	f.links.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]search.Result{}, nil)

	in := &models.ProfileInput{
		RecipientProfile: models.RecipientProfile{AgeRange: "teen-ish", Interests: []string{"books"}},
		GiftingContext:   models.GiftingContext{BudgetRange: "lots"},
	}
	_, err := f.engine.Dispatch(context.Background(), testSession, in)
	require.NoError(t, err)

	f.chatModel.AssertCalled(t, "Generate", mock.Anything, mock.MatchedBy(func(msgs []*schema.Message) bool {
		prompt := msgs[len(msgs)-1].Content
		return assert.Contains(t, prompt, `"age_range": "26_35"`) &&
			assert.Contains(t, prompt, `"budget_range": "50_100"`) &&
			assert.Contains(t, prompt, `"location": "United States"`)
	}))
	assert.Equal(t, models.AgeRange("teen-ish"), in.RecipientProfile.AgeRange)
}

func TestGiftEngine_DispatchSearch(t *testing.T) {
	t.Run("empty query short circuits", func(t *testing.T) {
		f := newEngineFixture(false)

		result, err := f.engine.Dispatch(context.Background(), testSession, &models.SearchInput{SearchQuery: "  "})
		require.NoError(t, err)

		resp := result.(*models.SearchResponse)
		assert.Equal(t, models.FlowSearch, resp.Flow)
		assert.Empty(t, resp.Shops)
		assert.Equal(t, NoShopsFoundMessage, resp.Message)

		f.shops.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		f.chatModel.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("results", func(t *testing.T) {
		f := newEngineFixture(false)
		f.shops.On("Search", mock.Anything, "ceramics", mock.Anything).Return([]search.Result{
			{Title: "Studio", URL: "https://studio.example.com", Snippet: "Hand-thrown"},
		}, nil).Once()

		result, err := f.engine.Dispatch(context.Background(), testSession, &models.SearchInput{SearchQuery: "ceramics"})
		require.NoError(t, err)
		assert.Equal(t, 1, result.ItemCount())
		f.chatModel.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("provider error", func(t *testing.T) {
		f := newEngineFixture(false)
		f.shops.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("503")).Once()

		result, err := f.engine.Dispatch(context.Background(), testSession, &models.SearchInput{SearchQuery: "ceramics"})
		assert.Nil(t, result)
		assert.Error(t, err)
		assert.Equal(t, "error", f.events.events[0].Outcome)
	})
}

func TestGiftEngine_GenerateForPerson(t *testing.T) {
	ctx := context.Background()
	personID, userID := uuid.New(), uuid.New()
	person := &models.Person{ID: personID, UserID: userID, Name: "Sam", CountryCode: "GB", City: "Leeds"}

	t.Run("no questionnaire never calls the model", func(t *testing.T) {
		f := newEngineFixture(true)
		f.people.On("GetPerson", mock.Anything, personID, userID).Return(person, nil)
		f.people.On("LatestQuestionnaire", mock.Anything, personID).Return(nil, nil)

		result, err := f.engine.GenerateForPerson(ctx, testSession, personID, userID)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrNoQuestionnaire)
		f.chatModel.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("person not found", func(t *testing.T) {
		f := newEngineFixture(true)
		f.people.On("GetPerson", mock.Anything, personID, userID).Return(nil, repository.ErrPersonNotFound)

		_, err := f.engine.GenerateForPerson(ctx, testSession, personID, userID)
		assert.ErrorIs(t, err, repository.ErrPersonNotFound)
	})

	t.Run("full flow", func(t *testing.T) {
		f := newEngineFixture(true)
		f.people.On("GetPerson", mock.Anything, personID, userID).Return(person, nil)
		f.people.On("LatestQuestionnaire", mock.Anything, personID).Return(&models.QuestionnaireResponse{
			PersonID: personID,
			Answers:  map[string]interface{}{"interests": []interface{}{"coffee"}, "price_range": "20-50"},
		}, nil)
		f.chatModel.On("Generate", mock.Anything, mock.Anything).Return(completion(fiveIdeasJSON), nil).Once()
		f.links.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]search.Result{}, nil)

		result, err := f.engine.GenerateForPerson(ctx, testSession, personID, userID)
		require.NoError(t, err)
		assert.Len(t, result.GiftIdeas, 5)
		assert.Equal(t, 5, f.events.events[0].ItemCount)
	})

	t.Run("no database", func(t *testing.T) {
		f := newEngineFixture(false)
		_, err := f.engine.GenerateForPerson(ctx, testSession, personID, userID)
		assert.ErrorIs(t, err, ErrPeopleUnavailable)
	})
}

func TestGiftEngine_PreviewInput(t *testing.T) {
	f := newEngineFixture(true)
	personID, userID := uuid.New(), uuid.New()
	f.people.On("GetPerson", mock.Anything, personID, userID).Return(&models.Person{ID: personID, CountryCode: "GB"}, nil)
	f.people.On("LatestQuestionnaire", mock.Anything, personID).Return(&models.QuestionnaireResponse{
		Answers: map[string]interface{}{"price_range": "under 20"},
	}, nil)

	preview, err := f.engine.PreviewInput(context.Background(), personID, userID)
	require.NoError(t, err)

	assert.Equal(t, "GBP", preview.CurrencyCode)
	assert.Equal(t, "£", preview.CurrencySymbol)
	assert.Equal(t, "United Kingdom", preview.Input.RecipientProfile.Location)
	assert.Equal(t, models.BudgetUnder20, preview.Input.GiftingContext.BudgetRange)
	f.chatModel.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
