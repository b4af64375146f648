// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

// mockProvider records calls and returns a canned answer.
type mockProvider struct {
	name       string
	response   string
	err        error
	callCount  int
	lastSystem string
	lastUser   string
	mu         sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return m.response, m.err
}

// mockModerator returns a fixed result or error.
type mockModerator struct {
	result *ModerationResult
	err    error
	calls  int
	mu     sync.Mutex
}

func (m *mockModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result, m.err
}

// ---------- NewRegistry ----------

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry("claude", map[string]ProviderConfig{
		"openai":  {APIKey: "sk-1"},
		"claude":  {APIKey: "sk-2"},
		"gemini":  {APIKey: "sk-4"},
		"mistral": {},
		"unknown": {APIKey: "sk-3"},
	})

	if got := reg.Available(); !slices.Equal(got, []string{"claude", "gemini", "openai"}) {
		t.Errorf("Available: got %v", got)
	}
	if reg.ActiveName() != "claude" {
		t.Errorf("ActiveName: got %q", reg.ActiveName())
	}
	if reg.HasProvider("mistral") {
		t.Error("mistral without a key should not be registered")
	}
	if _, ok := reg.moderator.(*openAIModerator); !ok {
		t.Errorf("moderator: got %T, want *openAIModerator", reg.moderator)
	}
}

func TestNewRegistry_FallbackModerator(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai":  {APIKey: "sk-1"},
		"mistral": {APIKey: "sk-2"},
	})
	if _, ok := reg.moderator.(*fallbackModerator); !ok {
		t.Errorf("moderator: got %T, want *fallbackModerator", reg.moderator)
	}
}

func TestNewRegistry_NoKeys(t *testing.T) {
	reg := NewRegistry("openai", nil)
	if len(reg.Available()) != 0 {
		t.Errorf("Available: got %v", reg.Available())
	}
	if _, err := reg.Active(); err == nil {
		t.Error("Active: expected error without providers")
	}

	res, err := reg.CheckPrompt(context.Background(), "anything")
	if err != nil || !res.Safe {
		t.Errorf("CheckPrompt without moderator: %+v, %v", res, err)
	}
}

// ---------- Generate / SetActive ----------

func TestRegistryGenerate(t *testing.T) {
	t.Run("delegates to active provider", func(t *testing.T) {
		mock := &mockProvider{name: "test", response: "Hello"}
		reg := NewRegistry("test", nil)
		reg.Register("test", mock)

		got, err := reg.Generate(context.Background(), "system", "user")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got != "Hello" {
			t.Errorf("result: got %q", got)
		}
		if mock.callCount != 1 || mock.lastSystem != "system" || mock.lastUser != "user" {
			t.Errorf("provider saw %d calls, %q, %q", mock.callCount, mock.lastSystem, mock.lastUser)
		}
	})

	t.Run("propagates provider error", func(t *testing.T) {
		boom := errors.New("api failure")
		reg := NewRegistry("test", nil)
		reg.Register("test", &mockProvider{name: "test", err: boom})

		if _, err := reg.Generate(context.Background(), "s", "u"); !errors.Is(err, boom) {
			t.Errorf("got %v, want %v", err, boom)
		}
	})

	t.Run("missing active provider", func(t *testing.T) {
		reg := NewRegistry("ghost", nil)
		if _, err := reg.Generate(context.Background(), "s", "u"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestRegistrySetActive(t *testing.T) {
	reg := NewRegistry("a", nil)
	reg.Register("a", &mockProvider{name: "a", response: "from a"})
	reg.Register("b", &mockProvider{name: "b", response: "from b"})

	if err := reg.SetActive("c"); err == nil {
		t.Error("SetActive(c): expected error")
	}
	if reg.ActiveName() != "a" {
		t.Errorf("failed SetActive changed active to %q", reg.ActiveName())
	}

	if err := reg.SetActive("b"); err != nil {
		t.Fatalf("SetActive(b): %v", err)
	}
	got, _ := reg.Generate(context.Background(), "", "")
	if got != "from b" {
		t.Errorf("after switch: got %q", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry("a", nil)
	reg.Register("a", &mockProvider{name: "a", response: "x"})
	reg.Register("b", &mockProvider{name: "b", response: "y"})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = reg.Generate(context.Background(), "", "")
		}()
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = reg.SetActive("b")
			} else {
				_ = reg.SetActive("a")
			}
		}()
	}
	wg.Wait()
}

// ---------- CheckPrompt ----------

func TestRegistryCheckPrompt(t *testing.T) {
	mod := &mockModerator{result: &ModerationResult{Safe: false, Categories: []string{"hate"}}}
	reg := NewRegistry("", nil)
	reg.SetModerator(mod)

	res, err := reg.CheckPrompt(context.Background(), "bad")
	if err != nil {
		t.Fatalf("CheckPrompt: %v", err)
	}
	if res.Safe || len(res.Categories) != 1 {
		t.Errorf("result: %+v", res)
	}
	if mod.calls != 1 {
		t.Errorf("moderator calls: %d", mod.calls)
	}

	reg.SetModerator(nil)
	res, _ = reg.CheckPrompt(context.Background(), "bad")
	if !res.Safe {
		t.Error("nil moderator should pass everything")
	}
}
