// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the Mini App API.
// Handlers are grouped by concern (auth, catalog, projects, AI, drafts)
// and receive their dependencies through the handler struct. Every
// response uses the {"success", "data" | "error"} envelope.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"contentwizard/internal/ai"
	"contentwizard/internal/cache"
	"contentwizard/internal/catalog"
	"contentwizard/internal/compose"
	"contentwizard/internal/export"
	"contentwizard/internal/middleware"
	"contentwizard/internal/models"
	"contentwizard/internal/session"
	"contentwizard/internal/telegram"
)

// maxBodyBytes bounds request bodies. Drafts carry a whole project.
const maxBodyBytes = 1 << 20

// ProjectRepository persists projects. *store.ProjectStore satisfies it.
type ProjectRepository interface {
	Create(p *models.Project) (*models.Project, error)
	Get(userID, id uuid.UUID) (*models.Project, error)
	List(userID uuid.UUID, status models.ProjectStatus) ([]models.Project, error)
	Update(userID, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error)
	Delete(userID, id uuid.UUID) (bool, error)
	Stats(userID uuid.UUID) (models.ProjectStats, error)
}

// UserRepository persists users. *store.UserStore satisfies it.
type UserRepository interface {
	UpsertTelegram(u *models.User) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	UpdatePreferences(id uuid.UUID, p models.Preferences) (*models.User, error)
}

// SessionIssuer creates and revokes bearer sessions. *session.Store
// satisfies it.
type SessionIssuer interface {
	Issue(ctx context.Context, d *session.Data) (string, error)
	Revoke(ctx context.Context, token string) error
}

// InitDataValidator checks Telegram WebApp initData. *telegram.Validator
// satisfies it.
type InitDataValidator interface {
	Validate(raw string) (*telegram.InitData, error)
}

// ContentWriter generates and improves copy. *ai.Writer satisfies it.
type ContentWriter interface {
	Generate(ctx context.Context, req ai.GenerateRequest) (string, error)
	Improve(ctx context.Context, content, instructions string) (string, error)
}

// ProjectExporter publishes project documents. *export.Exporter satisfies it.
type ProjectExporter interface {
	Export(ctx context.Context, req export.Request) (*models.Export, error)
	History(ctx context.Context, userID, projectID uuid.UUID, limit int) ([]models.Export, error)
}

// DraftRepository keeps constructor drafts. *cache.DraftStore satisfies it.
type DraftRepository interface {
	Save(ctx context.Context, userID uuid.UUID, d cache.Draft) error
	Load(ctx context.Context, userID uuid.UUID) (*cache.Draft, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// response is the envelope of every API answer.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, response{Success: false, Error: msg})
}

// errBadRequest marks client input errors raised inside handlers.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// errProjectNotFound is returned when a project id does not belong to the
// caller or does not exist.
var errProjectNotFound = errors.New("project not found")

// errorStatus maps domain errors to an HTTP status and a client message.
// Unknown errors become 500 with a generic message.
func errorStatus(err error) (int, string) {
	var flagged *ai.FlaggedError
	var apiErr *ai.APIError
	var integrity *catalog.IntegrityError

	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errProjectNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, compose.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, compose.ErrInvalidSelection), errors.Is(err, compose.ErrUnknownVariable):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, compose.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, export.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "export storage is not configured"
	case errors.Is(err, telegram.ErrInvalidInitData), errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized, "authentication failed"
	case errors.Is(err, ai.ErrEmptyInput), errors.Is(err, ai.ErrInputTooLong):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &flagged):
		return http.StatusUnprocessableEntity, flagged.Error()
	case errors.Is(err, ai.ErrEmptyResult), errors.As(err, &apiErr):
		return http.StatusBadGateway, "content generation failed, try again later"
	case errors.As(err, &integrity):
		return http.StatusInternalServerError, "catalog is inconsistent"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	}
	return http.StatusInternalServerError, "internal server error"
}

// fail writes err as an error response, logging server-side failures.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= 500 {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequest("request body too large")
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		}
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

// currentUser returns the authenticated user id. RequireAuth guarantees a
// session on every route that calls it.
func currentUser(r *http.Request) uuid.UUID {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return sess.UserID
	}
	return uuid.Nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("invalid id %q", raw)
	}
	return id, nil
}
