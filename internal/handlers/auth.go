package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"contentwizard/internal/catalog"
	"contentwizard/internal/models"
	"contentwizard/internal/session"
)

// Auth handles Telegram login, logout and the current user's profile.
type Auth struct {
	initData InitDataValidator
	sessions SessionIssuer
	users    UserRepository
	catalog  *catalog.Catalog
}

// NewAuth creates a new Auth handler group.
func NewAuth(initData InitDataValidator, sessions SessionIssuer, users UserRepository, cat *catalog.Catalog) *Auth {
	return &Auth{initData: initData, sessions: sessions, users: users, catalog: cat}
}

type loginRequest struct {
	InitData string `json:"initData"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// TelegramLogin validates the Mini App initData, creates or refreshes the
// user and issues a bearer session.
func (a *Auth) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.InitData == "" {
		writeError(w, http.StatusBadRequest, "initData is required")
		return
	}

	data, err := a.initData.Validate(req.InitData)
	if err != nil {
		slog.Warn("telegram login rejected", "error", err, "remote", r.RemoteAddr)
		fail(w, r, err)
		return
	}

	user, err := a.users.UpsertTelegram(&models.User{
		TelegramID: data.User.ID,
		Username:   data.User.Username,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		PhotoURL:   data.User.PhotoURL,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	sess := &session.Data{
		UserID:     user.ID,
		TelegramID: user.TelegramID,
		FirstName:  user.FirstName,
		Username:   user.Username,
	}
	token, err := a.sessions.Issue(r.Context(), sess)
	if err != nil {
		fail(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "telegram_id", user.TelegramID)
	writeOK(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: sess.ExpiresAt, User: user})
}

// CurrentUser returns the authenticated user's profile.
func (a *Auth) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.FindByID(currentUser(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if user == nil {
		// Session outlived the account.
		writeError(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	writeOK(w, http.StatusOK, user)
}

// Logout revokes the bearer session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Revoke(r.Context(), session.BearerToken(r)); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// UpdatePreferences replaces the user's constructor defaults. Fields left
// empty fall back to the defaults for new users.
func (a *Auth) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := decodeJSON(w, r, &prefs); err != nil {
		fail(w, r, err)
		return
	}
	if msg := validatePreferences(prefs, a.catalog); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	def := models.DefaultPreferences()
	if prefs.PreferredTone == "" {
		prefs.PreferredTone = def.PreferredTone
	}
	if prefs.PreferredLength == "" {
		prefs.PreferredLength = def.PreferredLength
	}
	if prefs.Language == "" {
		prefs.Language = def.Language
	}

	user, err := a.users.UpdatePreferences(currentUser(r), prefs)
	if err != nil {
		fail(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	writeOK(w, http.StatusOK, user)
}
