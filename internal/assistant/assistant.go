// Package assistant provides an optional chat assistant backed by any
// OpenAI-compatible completion endpoint.
package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/parley-im/parley/internal/config"
	"github.com/parley-im/parley/internal/constants"
	"github.com/parley-im/parley/internal/store"
)

const assistantUserID = "@assistant:parley"

const systemPrompt = "You are a helpful assistant participating in a chat room. " +
	"Reply briefly and conversationally to the most recent message."

// Assistant answers room messages through a chat completion endpoint.
// A nil endpoint disables it without error.
type Assistant struct {
	client      *openai.Client
	model       string
	temperature float64
	selfID      string
	limiter     *rate.Limiter
	enabled     bool
}

// New creates an assistant from config. When no endpoint is configured the
// assistant is disabled and Reply returns an error.
func New(cfg config.AssistantConfig, apiKey string) *Assistant {
	if cfg.Endpoint == "" {
		return &Assistant{selfID: assistantUserID}
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/v1"

	return &Assistant{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		selfID:      assistantUserID,
		limiter:     rate.NewLimiter(rate.Limit(1), 3),
		enabled:     true,
	}
}

// Enabled reports whether an endpoint is configured.
func (a *Assistant) Enabled() bool {
	return a.enabled
}

// UserID returns the assistant's sender ID for stored messages.
func (a *Assistant) UserID() string {
	return a.selfID
}

// Reply generates a response to the most recent messages in a room.
func (a *Assistant) Reply(ctx context.Context, history []*store.Message) (string, error) {
	if !a.enabled {
		return "", errors.New("assistant not configured")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    a.toChatMessages(history),
		Temperature: float32(a.temperature),
	})
	if err != nil {
		log.Warn().Err(err).Str("model", a.model).Msg("Assistant completion failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// toChatMessages converts the tail of a room timeline into completion
// messages. The assistant's own messages map to the assistant role,
// everything else to the user role prefixed with the sender.
func (a *Assistant) toChatMessages(history []*store.Message) []openai.ChatCompletionMessage {
	if len(history) > constants.AssistantContextMessages {
		history = history[len(history)-constants.AssistantContextMessages:]
	}

	result := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	result = append(result, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, msg := range history {
		if msg.Sender == a.selfID {
			result = append(result, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Body,
			})
			continue
		}
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: msg.Sender + ": " + msg.Body,
		})
	}

	return result
}
