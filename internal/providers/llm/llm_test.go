package llm

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/giftengine/internal/config"
)

func TestNewChatModel(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	ctx := context.Background()

	t.Run("openai", func(t *testing.T) {
		m, err := NewChatModel(ctx, config.LLMConfig{
			Provider: ProviderOpenAI,
			BaseURL:  "http://localhost:1/v1",
			APIKey:   "test-key",
			Model:    "gpt-4o-mini",
			Timeout:  time.Second,
		}, logger)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("ollama", func(t *testing.T) {
		m, err := NewChatModel(ctx, config.LLMConfig{
			Provider: ProviderOllama,
			BaseURL:  "http://localhost:11434",
			Model:    "llama3",
			Timeout:  time.Second,
		}, logger)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewChatModel(ctx, config.LLMConfig{Provider: "carrier-pigeon"}, logger)
		assert.Error(t, err)
	})
}
