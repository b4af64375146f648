package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"contentwizard/internal/ai"
	"contentwizard/internal/catalog"
	"contentwizard/internal/compose"
	"contentwizard/internal/export"
	"contentwizard/internal/models"
	"contentwizard/internal/session"
	"contentwizard/internal/telegram"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", badRequest("oops"), http.StatusBadRequest},
		{"project missing", errProjectNotFound, http.StatusNotFound},
		{"compose not found", fmt.Errorf("block: %w", compose.ErrNotFound), http.StatusNotFound},
		{"catalog not found", fmt.Errorf("type: %w", catalog.ErrNotFound), http.StatusNotFound},
		{"invalid selection", compose.ErrInvalidSelection, http.StatusUnprocessableEntity},
		{"unknown variable", compose.ErrUnknownVariable, http.StatusUnprocessableEntity},
		{"invalid status", compose.ErrInvalidStatus, http.StatusBadRequest},
		{"unsupported format", export.ErrUnsupportedFormat, http.StatusBadRequest},
		{"no storage", export.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"init data", telegram.ErrInvalidInitData, http.StatusUnauthorized},
		{"session", session.ErrInvalidToken, http.StatusUnauthorized},
		{"empty input", fmt.Errorf("generate: %w", ai.ErrEmptyInput), http.StatusBadRequest},
		{"too long", ai.ErrInputTooLong, http.StatusBadRequest},
		{"flagged", &ai.FlaggedError{Categories: []string{"hate"}}, http.StatusUnprocessableEntity},
		{"empty result", ai.ErrEmptyResult, http.StatusBadGateway},
		{"provider error", fmt.Errorf("generate: %w", &ai.APIError{Service: "openai", Status: 500}), http.StatusBadGateway},
		{"integrity", &catalog.IntegrityError{Problems: []string{"x"}}, http.StatusInternalServerError},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := errorStatus(tt.err)
			if got != tt.want {
				t.Errorf("status: got %d, want %d", got, tt.want)
			}
			if msg == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	_, msg := errorStatus(errors.New("pq: password authentication failed"))
	if msg != "internal server error" {
		t.Errorf("message: %q", msg)
	}
}

func newTestAuth(t *testing.T) (*Auth, *memUsers, *fakeSessions) {
	t.Helper()
	users := newMemUsers()
	sessions := &fakeSessions{}
	validator := &fakeInitData{raw: "valid", user: telegram.WebAppUser{ID: 4242, FirstName: "Anna", Username: "anna"}}
	return NewAuth(validator, sessions, users, testCatalog(t)), users, sessions
}

func TestTelegramLogin(t *testing.T) {
	auth, _, sessions := newTestAuth(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"valid", loginRequest{InitData: "valid"}, http.StatusOK},
		{"forged", loginRequest{InitData: "forged"}, http.StatusUnauthorized},
		{"missing", loginRequest{}, http.StatusBadRequest},
		{"malformed JSON", "{", http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := call(t, auth.TelegramLogin, http.MethodPost, "/api/auth/telegram", tt.body, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.wantStatus, env.Error)
			}
			if rr.Code != http.StatusOK {
				return
			}
			var resp loginResponse
			decodeData(t, env, &resp)
			if resp.User == nil || resp.User.TelegramID != 4242 {
				t.Fatalf("user: %+v", resp.User)
			}
			if resp.Token != "token-"+resp.User.ID.String() {
				t.Errorf("token: %q", resp.Token)
			}
			if resp.ExpiresAt.IsZero() {
				t.Error("expiresAt not set")
			}
		})
	}

	if len(sessions.issued) != 1 {
		t.Fatalf("issued %d sessions, want 1", len(sessions.issued))
	}
	if got := sessions.issued[0]; got.TelegramID != 4242 || got.FirstName != "Anna" {
		t.Errorf("session data: %+v", got)
	}
}

func TestTelegramLoginReusesUser(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	for range 2 {
		rr, _ := call(t, auth.TelegramLogin, http.MethodPost, "/api/auth/telegram", loginRequest{InitData: "valid"}, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status %d", rr.Code)
		}
	}
	if len(users.users) != 1 {
		t.Errorf("users: got %d, want 1", len(users.users))
	}
}

func TestCurrentUser(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	u, _ := users.UpsertTelegram(&models.User{TelegramID: 4242, FirstName: "Anna"})

	rr, env := call(t, auth.CurrentUser, http.MethodGet, "/api/auth/user", nil, &session.Data{UserID: u.ID})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var got models.User
	decodeData(t, env, &got)
	if got.ID != u.ID || got.FirstName != "Anna" {
		t.Errorf("user: %+v", got)
	}

	rr, _ = call(t, auth.CurrentUser, http.MethodGet, "/api/auth/user", nil, testSession())
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("deleted user: status %d", rr.Code)
	}
}

func TestLogout(t *testing.T) {
	auth, _, sessions := newTestAuth(t)

	rr, _ := call(t, auth.Logout, http.MethodPost, "/api/auth/logout", nil, testSession())
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if len(sessions.revoked) != 1 {
		t.Errorf("revoked: %v", sessions.revoked)
	}
}

func TestUpdatePreferences(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	u, _ := users.UpsertTelegram(&models.User{TelegramID: 4242, FirstName: "Anna"})
	sess := &session.Data{UserID: u.ID}

	rr, env := call(t, auth.UpdatePreferences, http.MethodPut, "/api/auth/preferences",
		models.Preferences{DefaultNiche: "finance", Language: models.LanguageEN}, sess)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, env.Error)
	}
	var got models.User
	decodeData(t, env, &got)
	want := models.Preferences{DefaultNiche: "finance", PreferredTone: "friendly", PreferredLength: "medium", Language: models.LanguageEN}
	if got.Preferences != want {
		t.Errorf("preferences: got %+v, want %+v", got.Preferences, want)
	}

	rr, _ = call(t, auth.UpdatePreferences, http.MethodPut, "/api/auth/preferences",
		models.Preferences{PreferredTone: "sarcastic"}, sess)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid tone: status %d", rr.Code)
	}
	if stored, _ := users.FindByID(u.ID); stored.Preferences != want {
		t.Errorf("rejected update changed preferences: %+v", stored.Preferences)
	}
}
