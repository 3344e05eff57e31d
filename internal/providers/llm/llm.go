package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewChatModel builds the completion provider named by cfg.Provider. The
// returned model carries its own timeout and never retries.
func NewChatModel(ctx context.Context, cfg config.LLMConfig, logger *logrus.Logger) (model.BaseChatModel, error) {
	logger.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"model":    cfg.Model,
		"timeout":  cfg.Timeout,
	}).Info("Initializing completion provider")

	switch cfg.Provider {
	case ProviderOpenAI, "":
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai chat model: %w", err)
		}
		return chatModel, nil
	case ProviderOllama:
		chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama chat model: %w", err)
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
