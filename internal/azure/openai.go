package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const azureAPIVersion = "2024-08-01-preview"

// OpenAIClient wraps the openai-go SDK with retry logic and logging.
// It talks to either Azure OpenAI or the public OpenAI API.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	provider   string
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NewOpenAIClient creates a new Azure OpenAI client using the openai-go SDK with Azure extensions
func NewOpenAIClient(endpoint, apiKey, deployment string, logger *zap.Logger) (*OpenAIClient, error) {
	if endpoint == "" || apiKey == "" || deployment == "" {
		return nil, fmt.Errorf("endpoint, apiKey, and deployment are required")
	}

	client := openai.NewClient(
		azure.WithEndpoint(endpoint, azureAPIVersion),
		azure.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return newClient(&client, deployment, "azure", logger), nil
}

// NewPublicOpenAIClient creates a client for the public OpenAI API.
// baseURL may be empty to use the SDK default.
func NewPublicOpenAIClient(apiKey, model, baseURL string, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" || model == "" {
		return nil, fmt.Errorf("apiKey and model are required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return newClient(&client, model, "openai", logger), nil
}

func newClient(client *openai.Client, model, provider string, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:     client,
		model:      model,
		provider:   provider,
		logger:     logger.With(zap.String("provider", provider)),
		maxRetries: 3,
		baseDelay:  time.Second,
	}
}

// Complete sends a chat completion request with retry logic
func (c *OpenAIClient) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	startTime := time.Now()
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info("retrying chat completion",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("chat completion cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := c.complete(ctx, messages)
		if err == nil {
			c.logger.Info("chat completion finished",
				zap.Duration("processing_time", time.Since(startTime)),
				zap.Int("attempts", attempt+1),
			)
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			c.logger.Error("non-retryable chat completion error",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			break
		}

		c.logger.Warn("chat completion failed, will retry",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	c.logger.Error("chat completion failed after retries",
		zap.Error(lastErr),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Int("max_retries", c.maxRetries),
	)

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries, lastErr)
}

// complete performs a single chat completion request
func (c *OpenAIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	requestStart := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from %s", c.provider)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}

	c.logger.Info("token usage",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return content, nil
}

// isRetryable reports whether an error should trigger another attempt.
// Rate limits, server errors and transport failures are retried; auth and request errors are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "authentication") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "401") {
		return false
	}

	if strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad request") || strings.Contains(errStr, "400") {
		return false
	}

	return true
}
