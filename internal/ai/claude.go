package ai

import (
	"context"
	"fmt"
	"net/http"
)

const anthropicVersion = "2023-06-01"

// claudeProvider uses the Anthropic Messages API (POST {base}/v1/messages).
type claudeProvider struct {
	config    ProviderConfig
	client    *http.Client
	maxTokens int
}

func newClaude(cfg ProviderConfig) *claudeProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	return &claudeProvider{
		config:    cfg,
		client:    &http.Client{Timeout: generateTimeout},
		maxTokens: defaultChatOptions.MaxTokens,
	}
}

func (p *claudeProvider) Name() string { return "claude" }

// Generate returns the first text block of the reply.
func (p *claudeProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := claudeRequest{
		Model:     p.config.Model,
		MaxTokens: p.maxTokens,
		System:    systemPrompt,
		Messages:  []claudeMessage{{Role: "user", Content: userPrompt}},
	}

	var result claudeResponse
	err := postJSON(ctx, p.client, "claude", p.config.BaseURL+"/v1/messages", map[string]string{
		"x-api-key":         p.config.APIKey,
		"anthropic-version": anthropicVersion,
	}, body, &result)
	if err != nil {
		return "", err
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("claude: no text content in response")
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
}
