package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/masroufy/masroufy/internal/metrics"
	"github.com/masroufy/masroufy/internal/models"
	"go.uber.org/zap"
)

// HTTPClassifier talks to the external NLU endpoint: POST {messages: [...]}
// and expect {completion: "<json>"}. Every failure mode (timeout, non-2xx,
// empty body, malformed completion, schema mismatch) degrades to the regex
// fallback; callers never see an error.
type HTTPClassifier struct {
	url      string
	timeout  time.Duration
	client   *http.Client
	fallback *FallbackClassifier
	logger   *zap.Logger
}

type nluRequest struct {
	Messages []HistoryMessage `json:"messages"`
}

type nluResponse struct {
	Completion string `json:"completion"`
}

func NewHTTPClassifier(url string, timeout time.Duration, fallback *FallbackClassifier, logger *zap.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		url:      url,
		timeout:  timeout,
		client:   &http.Client{},
		fallback: fallback,
		logger:   logger,
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, message string, lang models.Language, history []HistoryMessage) models.IntentResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		result models.IntentResult
		err    error
	}
	// Buffered so a late NLU response is dropped, not leaked.
	ch := make(chan outcome, 1)

	go func() {
		result, err := c.call(ctx, message, lang, history)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		c.logger.Warn("NLU call timed out, using fallback",
			zap.Duration("timeout", c.timeout))
		metrics.FallbackTotal.WithLabelValues("timeout").Inc()
		return c.fallback.Classify(ctx, message, lang, history)
	case out := <-ch:
		if out.err != nil {
			c.logger.Warn("NLU call failed, using fallback", zap.Error(out.err))
			metrics.FallbackTotal.WithLabelValues("error").Inc()
			return c.fallback.Classify(ctx, message, lang, history)
		}
		metrics.ClassificationsTotal.WithLabelValues(string(out.result.Intent), "ai").Inc()
		return out.result
	}
}

func (c *HTTPClassifier) call(ctx context.Context, message string, lang models.Language, history []HistoryMessage) (models.IntentResult, error) {
	messages := make([]HistoryMessage, 0, len(history)+2)
	messages = append(messages, HistoryMessage{Role: "system", Content: systemPrompt(lang)})
	messages = append(messages, history...)
	messages = append(messages, HistoryMessage{Role: "user", Content: message})

	body, err := json.Marshal(nluRequest{Messages: messages})
	if err != nil {
		return models.IntentResult{}, fmt.Errorf("failed to encode NLU request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return models.IntentResult{}, fmt.Errorf("failed to build NLU request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.IntentResult{}, fmt.Errorf("NLU request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.IntentResult{}, fmt.Errorf("NLU returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.IntentResult{}, fmt.Errorf("failed to read NLU response: %w", err)
	}
	if len(raw) == 0 {
		return models.IntentResult{}, fmt.Errorf("NLU returned an empty body")
	}

	var envelope nluResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return models.IntentResult{}, fmt.Errorf("failed to parse NLU response: %w", err)
	}

	return parseCompletion(envelope.Completion, lang)
}

// parseCompletion extracts the IntentResult JSON from a completion string,
// stripping markdown code fences the model sometimes wraps it in.
func parseCompletion(completion string, lang models.Language) (models.IntentResult, error) {
	cleaned := stripCodeFences(completion)
	if cleaned == "" {
		return models.IntentResult{}, fmt.Errorf("NLU completion is empty")
	}

	var result models.IntentResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return models.IntentResult{}, fmt.Errorf("NLU completion is not valid JSON: %w", err)
	}
	if result.Intent == "" {
		return models.IntentResult{}, fmt.Errorf("NLU completion has no intent")
	}
	if !result.Intent.Valid() {
		return models.IntentResult{}, fmt.Errorf("NLU completion has unknown intent %q", result.Intent)
	}

	return sanitize(result, lang), nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
