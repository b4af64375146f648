package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"contentwizard/internal/ai"
	"contentwizard/internal/catalog"
	"contentwizard/internal/models"
)

// aiTimeout bounds a single provider round trip.
const aiTimeout = 60 * time.Second

// AI exposes copy generation and improvement to the constructor.
type AI struct {
	writer ContentWriter
	users  UserRepository
}

// NewAI creates a new AI handler group. users may be nil; it is only read
// to fill style and language defaults from the caller's preferences.
func NewAI(writer ContentWriter, users UserRepository) *AI {
	return &AI{writer: writer, users: users}
}

type contentResponse struct {
	Content string `json:"content"`
}

// Generate writes new block copy from a prompt and a style hint. The
// result is template content: placeholders in it are kept.
func (h *AI) Generate(w http.ResponseWriter, r *http.Request) {
	var req ai.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.BlockType != "" && !req.BlockType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown block type")
		return
	}
	h.applyPreferences(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	start := time.Now()
	content, err := h.writer.Generate(ctx, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	slog.Info("content generated", "user_id", currentUser(r), "block_type", req.BlockType, "duration", time.Since(start))
	writeOK(w, http.StatusOK, contentResponse{Content: content})
}

type improveRequest struct {
	Content      string `json:"content"`
	Instructions string `json:"instructions"`
}

// Improve rewrites existing copy following optional instructions.
func (h *AI) Improve(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	start := time.Now()
	content, err := h.writer.Improve(ctx, req.Content, req.Instructions)
	if err != nil {
		fail(w, r, err)
		return
	}
	slog.Info("content improved", "user_id", currentUser(r), "duration", time.Since(start))
	writeOK(w, http.StatusOK, contentResponse{Content: content})
}

// applyPreferences fills unset style fields and the language from the
// caller's preferences, then from the defaults for new users.
func (h *AI) applyPreferences(r *http.Request, req *ai.GenerateRequest) {
	prefs := models.DefaultPreferences()
	if h.users != nil {
		u, err := h.users.FindByID(currentUser(r))
		if err != nil {
			slog.Warn("load preferences failed", "error", err)
		} else if u != nil {
			prefs = u.Preferences
		}
	}

	if req.Style.Tone == "" {
		req.Style.Tone = catalog.Tone(prefs.PreferredTone)
	}
	if req.Style.Length == "" {
		req.Style.Length = catalog.Length(prefs.PreferredLength)
	}
	if req.Style.Emotion == "" {
		req.Style.Emotion = catalog.EmotionTrust
	}
	if req.Language == "" {
		req.Language = string(prefs.Language)
	}
	if req.Niche == "" {
		req.Niche = prefs.DefaultNiche
	}
}
