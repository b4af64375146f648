// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai is the content-generation collaborator. A Registry holds the
// configured LLM providers (OpenAI, Claude, Gemini, Mistral) and a moderator, and a
// Writer turns constructor requests into copywriting prompts.
package ai

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Provider generates text from a system and a user prompt.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Registry manages available AI providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	moderator Moderator // nil when no moderation endpoint is configured
}

// NewRegistry creates a registry with a provider for every config that has
// an API key. OpenAI's free moderation endpoint is preferred for prompt
// checks, with Mistral's as fallback.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "gemini":
			r.providers[name] = newGemini(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}

	var mods []Moderator
	if cfg := configs["openai"]; cfg.APIKey != "" {
		mods = append(mods, newOpenAIModerator(cfg.APIKey, cfg.BaseURL))
	}
	if cfg := configs["mistral"]; cfg.APIKey != "" {
		mods = append(mods, newMistralModerator(cfg.APIKey, cfg.BaseURL))
	}
	switch len(mods) {
	case 1:
		r.moderator = mods[0]
	case 2:
		r.moderator = newFallbackModerator(mods[0], mods[1])
	}

	return r
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Available returns the sorted names of all configured providers.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds or replaces a provider.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// SetModerator replaces the prompt moderator. nil disables moderation.
func (r *Registry) SetModerator(m Moderator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// CheckPrompt runs text through the moderator. Without a moderator every
// prompt is considered safe.
func (r *Registry) CheckPrompt(ctx context.Context, text string) (*ModerationResult, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return m.CheckSafety(ctx, text)
}

// HasProvider checks whether a named provider is configured.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}
