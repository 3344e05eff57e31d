package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/internal/providers/search"
)

func newTestShopSearch(t *testing.T, client search.Client, withCache bool) (*ShopSearchService, *miniredis.Miniredis) {
	cfg := config.DiscoverySearchConfig{NumResults: 10, UseAutoprompt: true, CacheTTL: 15 * time.Minute}
	if !withCache {
		return NewShopSearchService(client, nil, cfg, newTestLogger()), nil
	}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewShopSearchService(client, rdb, cfg, newTestLogger()), mr
}

func TestTruncateSnippet(t *testing.T) {
	long := strings.Repeat("a", 250)
	truncated := TruncateSnippet(long)
	assert.Equal(t, strings.Repeat("a", 200)+"...", truncated)
	assert.Len(t, truncated, 203)

	short := strings.Repeat("b", 150)
	assert.Equal(t, short, TruncateSnippet(short))

	exact := strings.Repeat("c", 200)
	assert.Equal(t, exact, TruncateSnippet(exact))

	multibyte := strings.Repeat("é", 201)
	assert.Equal(t, strings.Repeat("é", 200)+"...", TruncateSnippet(multibyte))
}

func TestShopSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query makes no provider call", func(t *testing.T) {
		client := &MockSearchClient{}
		svc, _ := newTestShopSearch(t, client, false)

		for _, q := range []string{"", "   ", "\t\n"} {
			resp, err := svc.Search(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, "search", resp.Flow)
			assert.Equal(t, q, resp.SearchQuery)
			assert.Empty(t, resp.Shops)
			assert.NotNil(t, resp.Shops)
			assert.Equal(t, NoShopsFoundMessage, resp.Message)
		}
		client.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("results are capped and truncated", func(t *testing.T) {
		results := make([]search.Result, 12)
		for i := range results {
			results[i] = search.Result{
				Title:   "Shop",
				URL:     "https://shop.example.com",
				Snippet: strings.Repeat("x", 250),
			}
		}
		client := &MockSearchClient{}
		client.On("Search", mock.Anything, "ceramics shop", search.Options{MaxResults: 10}).Return(results, nil).Once()
		svc, _ := newTestShopSearch(t, client, false)

		resp, err := svc.Search(ctx, "ceramics shop")
		require.NoError(t, err)

		require.Len(t, resp.Shops, 10)
		assert.Empty(t, resp.Message)
		assert.Equal(t, strings.Repeat("x", 200)+"...", resp.Shops[0].Snippet)
		assert.Contains(t, resp.Shops[0].WhyThisIsRelevant, "ceramics shop")
		client.AssertExpectations(t)
	})

	t.Run("zero results returns message", func(t *testing.T) {
		client := &MockSearchClient{}
		client.On("Search", mock.Anything, "obscure thing", mock.Anything).Return([]search.Result{}, nil).Once()
		svc, _ := newTestShopSearch(t, client, false)

		resp, err := svc.Search(ctx, "obscure thing")
		require.NoError(t, err)
		assert.Empty(t, resp.Shops)
		assert.Equal(t, NoShopsFoundMessage, resp.Message)
	})

	t.Run("provider error is returned", func(t *testing.T) {
		client := &MockSearchClient{}
		client.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()
		svc, _ := newTestShopSearch(t, client, false)

		resp, err := svc.Search(ctx, "anything")
		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("cache serves repeated queries", func(t *testing.T) {
		client := &MockSearchClient{}
		client.On("Search", mock.Anything, "Ceramics  Shop", mock.Anything).Return([]search.Result{
			{Title: "Studio", URL: "https://studio.example.com", Snippet: "Hand-thrown"},
		}, nil).Once()
		svc, _ := newTestShopSearch(t, client, true)

		first, err := svc.Search(ctx, "Ceramics  Shop")
		require.NoError(t, err)
		second, err := svc.Search(ctx, " ceramics shop ")
		require.NoError(t, err)

		require.Len(t, second.Shops, 1)
		assert.Equal(t, first.Shops[0].URL, second.Shops[0].URL)
		assert.Equal(t, first.Shops[0].Snippet, second.Shops[0].Snippet)
		assert.Equal(t, " ceramics shop ", second.SearchQuery)
		assert.Equal(t, `Matches your search for "Ceramics  Shop".`, first.Shops[0].WhyThisIsRelevant)
		assert.Equal(t, `Matches your search for "ceramics shop".`, second.Shops[0].WhyThisIsRelevant)
		client.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("cache outage fails open", func(t *testing.T) {
		client := &MockSearchClient{}
		client.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]search.Result{
			{Title: "Studio", URL: "https://studio.example.com"},
		}, nil)
		svc, mr := newTestShopSearch(t, client, true)
		mr.Close()

		resp, err := svc.Search(ctx, "ceramics")
		require.NoError(t, err)
		assert.Len(t, resp.Shops, 1)
	})
}

func TestShopSearchService_LogsTopScore(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	client := &MockSearchClient{}
	client.On("Search", mock.Anything, "ceramics", mock.Anything).Return([]search.Result{
		{Title: "Studio", URL: "https://studio.example.com", Score: 0.42},
		{Title: "Kiln", URL: "https://kiln.example.com", Score: 0.87},
	}, nil).Once()
	svc := NewShopSearchService(client, nil, config.DiscoverySearchConfig{NumResults: 10}, logger)

	_, err := svc.Search(context.Background(), "ceramics")
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Shop search completed", entry.Message)
	assert.Equal(t, 0.87, entry.Data["top_score"])
	assert.Equal(t, 2, entry.Data["results"])
}
