package ai

import (
	"context"
	"fmt"
	"net/http"
)

// openAIProvider talks to an OpenAI-compatible chat completions endpoint
// (POST {base}/chat/completions). Mistral reuses it with another base URL.
type openAIProvider struct {
	name    string
	config  ProviderConfig
	client  *http.Client
	options chatOptions
}

// chatOptions are the sampling settings sent with every request.
type chatOptions struct {
	Temperature float64
	MaxTokens   int
}

var defaultChatOptions = chatOptions{Temperature: 0.7, MaxTokens: 1024}

func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAIProvider{
		name:    "openai",
		config:  cfg,
		client:  &http.Client{Timeout: generateTimeout},
		options: defaultChatOptions,
	}
}

func (p *openAIProvider) Name() string { return p.name }

// Generate sends a system and a user message and returns the first choice.
func (p *openAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := openAIRequest{
		Model: p.config.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: p.options.Temperature,
		MaxTokens:   p.options.MaxTokens,
	}

	var result openAIResponse
	err := postJSON(ctx, p.client, p.name, p.config.BaseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.config.APIKey}, body, &result)
	if err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.name)
	}
	return result.Choices[0].Message.Content, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}
