// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool
	Categories []string // flagged categories, sorted; empty when safe
}

// Moderator checks user text for policy violations before generation.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// flaggedCategories turns a category map into sorted display names, e.g.
// "hate/threatening" becomes "hate (threatening)".
func flaggedCategories(cats map[string]bool) []string {
	var out []string
	for cat, flagged := range cats {
		if !flagged {
			continue
		}
		display := cat
		if head, tail, ok := strings.Cut(cat, "/"); ok {
			display = head + " (" + tail + ")"
		}
		out = append(out, strings.ReplaceAll(display, "_", " "))
	}
	slices.Sort(out)
	return out
}

// openAIModerator uses the free OpenAI moderation endpoint.
type openAIModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIModerator(apiKey, baseURL string) *openAIModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIModerator{apiKey: apiKey, baseURL: baseURL, client: &http.Client{Timeout: moderateTimeout}}
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var result openAIModResponse
	err := postJSON(ctx, m.client, "moderation", m.baseURL+"/moderations",
		map[string]string{"Authorization": "Bearer " + m.apiKey},
		moderationRequest{Model: "omni-moderation-latest", Input: text}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 || !result.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}
	return &ModerationResult{Safe: false, Categories: flaggedCategories(result.Results[0].Categories)}, nil
}

// mistralModerator uses Mistral's moderation endpoint, which has no
// top-level flag; any flagged category makes the text unsafe.
type mistralModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newMistralModerator(apiKey, baseURL string) *mistralModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	return &mistralModerator{apiKey: apiKey, baseURL: baseURL, client: &http.Client{Timeout: moderateTimeout}}
}

func (m *mistralModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var result mistralModResponse
	err := postJSON(ctx, m.client, "mistral moderation", m.baseURL+"/moderations",
		map[string]string{"Authorization": "Bearer " + m.apiKey},
		moderationRequest{Model: "mistral-moderation-latest", Input: text}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}
	flagged := flaggedCategories(result.Results[0].Categories)
	return &ModerationResult{Safe: len(flagged) == 0, Categories: flagged}, nil
}

// fallbackModerator asks primary first and switches to secondary for good
// once primary rejects its credentials. Other primary errors fall through
// to secondary for that call only.
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
	disabled  atomic.Bool
}

func newFallbackModerator(primary, secondary Moderator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (m *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	if !m.disabled.Load() {
		res, err := m.primary.CheckSafety(ctx, text)
		if err == nil {
			return res, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsAuth() {
			slog.Warn("primary moderator rejected credentials, using fallback", "error", err)
			m.disabled.Store(true)
		} else {
			slog.Warn("primary moderator failed, trying fallback", "error", err)
		}
	}
	return m.secondary.CheckSafety(ctx, text)
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIModResponse struct {
	Results []openAIModResult `json:"results"`
}

type openAIModResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}

type mistralModResponse struct {
	Results []mistralModResult `json:"results"`
}

type mistralModResult struct {
	Categories map[string]bool `json:"categories"`
}
