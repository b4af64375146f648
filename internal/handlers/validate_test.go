package handlers

import (
	"strings"
	"testing"

	"contentwizard/internal/catalog"
	"contentwizard/internal/models"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid", "Spring webinar", false},
		{"cyrillic", "Вебинар по SMM", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 201), true},
		{"max length runes", strings.Repeat("я", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateProjectName(tt.input)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateVariableValue(t *testing.T) {
	text := &catalog.Variable{Name: "title", Type: catalog.VariableText}
	number := &catalog.Variable{Name: "price", Type: catalog.VariableNumber}
	sel := &catalog.Variable{Name: "format", Type: catalog.VariableSelect, Options: []string{"online", "offline"}}

	tests := []struct {
		name      string
		v         *catalog.Variable
		value     string
		wantError bool
	}{
		{"text", text, "Anything goes", false},
		{"text too long", text, strings.Repeat("a", 2001), true},
		{"empty always allowed", sel, "", false},
		{"number", number, "1 990.50", false},
		{"negative number", number, "-5", false},
		{"not a number", number, "cheap", true},
		{"select option", sel, "online", false},
		{"select other", sel, "hybrid", true},
		{"undeclared variable", nil, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateVariableValue(tt.v, tt.value)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateBlockContent(t *testing.T) {
	if msg := validateBlockContent(strings.Repeat("a", 20_000)); msg != "" {
		t.Errorf("content at the limit rejected: %s", msg)
	}
	if msg := validateBlockContent(strings.Repeat("a", 20_001)); msg == "" {
		t.Error("expected error for content over the limit")
	}
}

func TestValidateProjectVariables(t *testing.T) {
	many := make(map[string]string, 101)
	for i := range 101 {
		many[strings.Repeat("k", i+1)] = "v"
	}

	tests := []struct {
		name      string
		vars      map[string]string
		wantError bool
	}{
		{"nil", nil, false},
		{"valid", map[string]string{"brand": "Acme"}, false},
		{"blank key", map[string]string{" ": "x"}, true},
		{"long value", map[string]string{"k": strings.Repeat("a", 2001)}, true},
		{"too many", many, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateProjectVariables(tt.vars)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidatePreferences(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	niche := cat.Niches()[0].ID

	tests := []struct {
		name      string
		prefs     models.Preferences
		wantError bool
	}{
		{"defaults", models.DefaultPreferences(), false},
		{"empty", models.Preferences{}, false},
		{"known niche", models.Preferences{DefaultNiche: niche}, false},
		{"universal niche", models.Preferences{DefaultNiche: catalog.UniversalNiche}, false},
		{"unknown niche", models.Preferences{DefaultNiche: "astrology"}, true},
		{"unknown tone", models.Preferences{PreferredTone: "sarcastic"}, true},
		{"unknown length", models.Preferences{PreferredLength: "epic"}, true},
		{"unknown language", models.Preferences{Language: "de"}, true},
		{"english", models.Preferences{Language: models.LanguageEN}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validatePreferences(tt.prefs, cat)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
