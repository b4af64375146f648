package handlers

import (
	"strings"
	"unicode/utf8"

	"contentwizard/internal/catalog"
	"contentwizard/internal/models"
)

// Validation limits for project and constructor inputs.
const (
	maxProjectNameLen   = 200
	maxVariableValueLen = 2_000
	maxBlockContentLen  = 20_000
	maxProjectVariables = 100
)

// validateProjectName checks a project name and returns the first error found.
func validateProjectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Project name is required."
	}
	if utf8.RuneCountInString(name) > maxProjectNameLen {
		return "Project name is too long (max 200 characters)."
	}
	return ""
}

// validateVariableValue checks a value entered for a template variable.
// Select variables only accept one of their options; an empty value is
// always allowed.
func validateVariableValue(v *catalog.Variable, value string) string {
	if utf8.RuneCountInString(value) > maxVariableValueLen {
		return "Value is too long (max 2,000 characters)."
	}
	if value == "" || v == nil {
		return ""
	}
	switch v.Type {
	case catalog.VariableSelect:
		for _, opt := range v.Options {
			if opt == value {
				return ""
			}
		}
		return "Value must be one of the listed options."
	case catalog.VariableNumber:
		if strings.TrimLeft(value, "0123456789.,- ") != "" {
			return "Value must be a number."
		}
	}
	return ""
}

// validateBlockContent checks replacement content for a block.
func validateBlockContent(content string) string {
	if utf8.RuneCountInString(content) > maxBlockContentLen {
		return "Content is too long (max 20,000 characters)."
	}
	return ""
}

// validateProjectVariables checks the project-wide variable bag.
func validateProjectVariables(vars map[string]string) string {
	if len(vars) > maxProjectVariables {
		return "Too many project variables (max 100)."
	}
	for k, v := range vars {
		if strings.TrimSpace(k) == "" {
			return "Project variable names must not be empty."
		}
		if utf8.RuneCountInString(v) > maxVariableValueLen {
			return "Project variable value is too long (max 2,000 characters)."
		}
	}
	return ""
}

// validatePreferences checks user preferences against the catalog enums.
func validatePreferences(p models.Preferences, cat *catalog.Catalog) string {
	switch catalog.Tone(p.PreferredTone) {
	case "", catalog.ToneFormal, catalog.ToneCasual, catalog.ToneUrgent, catalog.ToneFriendly:
	default:
		return "Unknown tone."
	}
	switch catalog.Length(p.PreferredLength) {
	case "", catalog.LengthShort, catalog.LengthMedium, catalog.LengthLong:
	default:
		return "Unknown length."
	}
	switch p.Language {
	case "", models.LanguageRU, models.LanguageEN:
	default:
		return "Unsupported language."
	}
	if p.DefaultNiche != "" && p.DefaultNiche != catalog.UniversalNiche && cat != nil {
		if _, err := cat.Niche(p.DefaultNiche); err != nil {
			return "Unknown niche."
		}
	}
	return ""
}
