package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/alchemorsel-mobile/backend/config"
)

// GeminiClient calls the Gemini generateContent endpoint
type GeminiClient struct {
	client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// NewGeminiClient creates a client; hc may be nil
func NewGeminiClient(name string, cfg config.ProviderConfig, hc *http.Client) *GeminiClient {
	return &GeminiClient{client: newClient(name, cfg, hc)}
}

// Name returns the provider name
func (c *GeminiClient) Name() string { return c.name }

// endpoint never carries the API key; transport errors quote the full URL
func (c *GeminiClient) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%s:generateContent", base, c.cfg.Model)
}

// Complete maps the conversation onto Gemini's user/model turns
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		Contents: make([]geminiContent, 0, len(req.History)+1),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.cfg.Temperature,
			TopP:            c.cfg.TopP,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.JSON {
		body.GenerationConfig.ResponseMIMEType = "application/json"
	}
	for _, m := range req.History {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	body.Contents = append(body.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.User}}})

	header := http.Header{}
	header.Set("x-goog-api-key", c.cfg.APIKey)

	data, err := c.post(ctx, c.endpoint(), body, header)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%s: failed to decode response", c.name)
	}

	var sb strings.Builder
	for _, part := range gjson.GetBytes(data, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	if strings.TrimSpace(sb.String()) == "" {
		if reason := gjson.GetBytes(data, "promptFeedback.blockReason").String(); reason != "" {
			return "", fmt.Errorf("%s: prompt blocked: %s", c.name, reason)
		}
		return "", fmt.Errorf("%s: %w", c.name, ErrEmptyResponse)
	}
	return sb.String(), nil
}
