package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plan is the user's subscription tier.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// Language is the interface language a user prefers.
type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
)

// User is a Mini App user, identified by their Telegram account.
type User struct {
	ID          uuid.UUID   `json:"id"`
	TelegramID  int64       `json:"telegramId"`
	Username    string      `json:"username,omitempty"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName,omitempty"`
	PhotoURL    string      `json:"photoUrl,omitempty"`
	Plan        Plan        `json:"plan"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	LastSeenAt  time.Time   `json:"lastSeenAt"`
}

// Preferences are the defaults the constructor pre-selects for a user.
type Preferences struct {
	DefaultNiche    string   `json:"defaultNiche,omitempty"`
	PreferredTone   string   `json:"preferredTone"`
	PreferredLength string   `json:"preferredLength"`
	Language        Language `json:"language"`
}

// DefaultPreferences returns the preferences assigned to new users.
func DefaultPreferences() Preferences {
	return Preferences{PreferredTone: "friendly", PreferredLength: "medium", Language: LanguageRU}
}

// DisplayName returns "First Last", falling back to @username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		return "@" + u.Username
	}
	return name
}
