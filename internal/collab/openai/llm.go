// Package openai implements the LLM port on top of an OpenAI-compatible
// chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

const defaultCallTimeout = 30 * time.Second

// Client calls a chat completion endpoint. Any OpenAI-compatible server
// works: set BaseURL to point at a local or proxied deployment.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

var _ ports.LLMService = (*Client)(nil)

// Config holds the connection settings for the completion endpoint.
type Config struct {
	Token   string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient creates an LLM client from cfg.
func NewClient(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// Generate returns free-form text for the given prompt and transcript.
func (c *Client) Generate(ctx context.Context, systemPrompt string, messages []domain.Message, temperature float64, maxTokens int) (string, error) {
	resp, err := c.complete(ctx, systemPrompt, messages, temperature, maxTokens, nil)
	if err != nil {
		return "", err
	}
	return resp, nil
}

// GenerateJSON asks the model for a single JSON object and decodes it.
func (c *Client) GenerateJSON(ctx context.Context, systemPrompt string, messages []domain.Message, temperature float64, maxTokens int) (map[string]any, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	raw, err := c.complete(ctx, systemPrompt, messages, temperature, maxTokens, format)
	if err != nil {
		return nil, err
	}

	// Some models wrap the object in a fenced code block despite the
	// response format hint.
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSpace(raw)

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model response: %w", err)
	}
	return out, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt string, messages []domain.Message, temperature float64, maxTokens int, format *openai.ChatCompletionResponseFormat) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chat := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		chat = append(chat, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range messages {
		chat = append(chat, openai.ChatCompletionMessage{
			Role:    completionRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            chat,
		Temperature:         float32(temperature),
		MaxCompletionTokens: maxTokens,
		ResponseFormat:      format,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}
	return resp.Choices[0].Message.Content, nil
}

func completionRole(role domain.Role) string {
	switch role {
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
