// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"contentwizard/internal/models"
)

const (
	draftKeyPrefix = "draft:"

	// DefaultDraftTTL is how long an untouched constructor draft survives.
	DefaultDraftTTL = 7 * 24 * time.Hour
)

// Draft is the constructor state a user can leave and come back to. The
// content type is stored as a catalog id, never as the resolved entry.
type Draft struct {
	CurrentProject      *models.Project `json:"currentProject"`
	SelectedContentType string          `json:"selectedContentType"`
	SelectedBlocks      []string        `json:"selectedBlocks"`
	CurrentStep         int             `json:"currentStep"`
	SavedAt             time.Time       `json:"savedAt"`
}

// DraftStore keeps one draft per user in Valkey.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore creates a draft store backed by the given Valkey client.
func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	if ttl == 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{client: client, ttl: ttl}
}

func draftKey(userID uuid.UUID) string {
	return draftKeyPrefix + userID.String()
}

// Save stores d as the user's draft and restarts its TTL.
func (ds *DraftStore) Save(ctx context.Context, userID uuid.UUID, d Draft) error {
	d.SavedAt = time.Now().UTC()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := ds.client.Set(ctx, draftKey(userID), data, ds.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	slog.Debug("draft saved", "user_id", userID, "bytes", len(data))
	return nil
}

// Load returns the user's draft. Returns nil if there is none.
func (ds *DraftStore) Load(ctx context.Context, userID uuid.UUID) (*Draft, error) {
	data, err := ds.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		// A corrupt draft is dropped rather than blocking the constructor.
		slog.Warn("discarding unreadable draft", "user_id", userID, "error", err)
		ds.client.Del(ctx, draftKey(userID))
		return nil, nil
	}
	return &d, nil
}

// Clear deletes the user's draft. Clearing a missing draft is not an error.
func (ds *DraftStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := ds.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
