// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"contentwizard/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// SessionVerifier resolves a bearer token to a live session.
// *session.Store satisfies it.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*session.Data, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the session in the request context otherwise. A failing session
// store answers 503.
func RequireAuth(v SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authorization required")
				return
			}

			data, err := v.Verify(r.Context(), token)
			switch {
			case errors.Is(err, session.ErrInvalidToken) || (err == nil && data == nil):
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			case err != nil:
				slog.Error("session verification failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "session store unavailable")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), data)))
		})
	}
}

// WithSession returns a copy of ctx carrying data.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
