package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/masroufy/masroufy/internal/metrics"
	"github.com/masroufy/masroufy/internal/models"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClassifier is the chat-completions backend, selected when no
// self-hosted NLU endpoint is deployed. Failure handling mirrors
// HTTPClassifier: everything degrades to the regex fallback.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	fallback    *FallbackClassifier
	logger      *zap.Logger
}

func NewOpenAIClassifier(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration, fallback *FallbackClassifier, logger *zap.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		fallback:    fallback,
		logger:      logger,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, message string, lang models.Language, history []HistoryMessage) models.IntentResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.call(ctx, message, lang, history)
	if err != nil {
		c.logger.Warn("OpenAI classification failed, using fallback", zap.Error(err))
		metrics.FallbackTotal.WithLabelValues("error").Inc()
		return c.fallback.Classify(ctx, message, lang, history)
	}

	metrics.ClassificationsTotal.WithLabelValues(string(result.Intent), "ai").Inc()
	return result
}

func (c *OpenAIClassifier) call(ctx context.Context, message string, lang models.Language, history []HistoryMessage) (models.IntentResult, error) {
	chatHistory := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	chatHistory = append(chatHistory, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(lang),
	})
	for _, h := range history {
		chatHistory = append(chatHistory, openai.ChatCompletionMessage{
			Role:    h.Role,
			Content: h.Content,
		})
	}
	chatHistory = append(chatHistory, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatHistory,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
	})
	if err != nil {
		return models.IntentResult{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.IntentResult{}, fmt.Errorf("chat completion returned no choices")
	}

	return parseCompletion(resp.Choices[0].Message.Content, lang)
}
