package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/giftengine/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestTavilyClient_Search(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"q","results":[
			{"title":"A","url":"https://a.example.com/x","content":"first","score":0.9},
			{"title":"B","url":"https://b.example.com/y","content":"second","score":0.8},
			{"title":"C","url":"https://c.example.com/z","content":"third","score":0.7},
			{"title":"D","url":"https://d.example.com/w","content":"fourth","score":0.6}
		]}`))
	}))
	defer server.Close()

	client := NewTavilyClient(config.EnrichmentSearchConfig{
		BaseURL:    server.URL,
		APIKey:     "tvly-test",
		MaxResults: 3,
		Timeout:    time.Second,
	}, testLogger())

	results, err := client.Search(context.Background(), "handmade ceramic mug", Options{})
	require.NoError(t, err)

	assert.Len(t, results, 3)
	assert.Equal(t, "A", results[0].Title)
	assert.Equal(t, "first", results[0].Snippet)
	assert.Equal(t, "handmade ceramic mug", got["query"])
	assert.Equal(t, float64(3), got["max_results"])
	assert.Equal(t, "basic", got["search_depth"])
}

func TestTavilyClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewTavilyClient(config.EnrichmentSearchConfig{BaseURL: server.URL, MaxResults: 3}, testLogger())

	_, err := client.Search(context.Background(), "q", Options{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "tavily", statusErr.Provider)
}

func TestTavilyClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := NewTavilyClient(config.EnrichmentSearchConfig{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	}, testLogger())

	_, err := client.Search(context.Background(), "q", Options{})
	assert.Error(t, err)
}

func TestExaClient_Search(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "exa-test", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"Shop One","url":"https://one.example.com","text":"Independent ceramics studio"},
			{"title":"Shop Two","url":"https://two.example.com","highlights":["Hand-thrown mugs"]}
		]}`))
	}))
	defer server.Close()

	client := NewExaClient(config.DiscoverySearchConfig{
		BaseURL:       server.URL,
		APIKey:        "exa-test",
		NumResults:    10,
		UseAutoprompt: true,
		Timeout:       time.Second,
	}, testLogger())

	results, err := client.Search(context.Background(), "ceramics shop", Options{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Independent ceramics studio", results[0].Snippet)
	assert.Equal(t, "Hand-thrown mugs", results[1].Snippet)
	assert.Equal(t, "ceramics shop", got["query"])
	assert.Equal(t, float64(10), got["numResults"])
	assert.Equal(t, true, got["useAutoprompt"])
}
