package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/alchemorsel-mobile/backend/config"
)

// OpenAIClient speaks the OpenAI chat-completions protocol. DeepSeek is the
// default endpoint.
type OpenAIClient struct {
	client
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
	TopP           float64           `json:"top_p,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
}

// NewOpenAIClient creates a client; hc may be nil
func NewOpenAIClient(name string, cfg config.ProviderConfig, hc *http.Client) *OpenAIClient {
	return &OpenAIClient{client: newClient(name, cfg, hc)}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string { return c.name }

// Complete sends the system prompt, history and user prompt as one conversation
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]Message, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.System})
	}
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: RoleUser, Content: req.User})

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   c.cfg.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	data, err := c.post(ctx, c.cfg.BaseURL, body, header)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%s: failed to decode response", c.name)
	}

	content := gjson.GetBytes(data, "choices.0.message.content").String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", c.name, ErrEmptyResponse)
	}
	return content, nil
}
