// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contentwizard/internal/compose"
	"contentwizard/internal/models"
	"contentwizard/internal/slug"
)

// DefaultURLTTL is how long a presigned export link stays valid.
const DefaultURLTTL = 24 * time.Hour

// ObjectStore is the part of storage.Client the exporter needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Recorder persists export records. *store.ExportStore satisfies it.
type Recorder interface {
	Create(e *models.Export) (*models.Export, error)
	ListByProject(userID, projectID uuid.UUID, limit int) ([]models.Export, error)
}

// Notifier delivers a message to a Telegram chat. *telegram.Bot satisfies it.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Request describes one export.
type Request struct {
	Project *compose.Project
	Format  Format
	// ChatID receives the link when Notify is set.
	ChatID int64
	Notify bool
}

// Exporter renders projects and publishes the artefacts.
type Exporter struct {
	objects  ObjectStore
	records  Recorder
	notifier Notifier
	urlTTL   time.Duration
	now      func() time.Time
}

// NewExporter returns an Exporter. objects may be nil, in which case every
// export fails with ErrStorageUnavailable; notifier may be nil.
func NewExporter(objects ObjectStore, records Recorder, notifier Notifier, urlTTL time.Duration) *Exporter {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &Exporter{
		objects:  objects,
		records:  records,
		notifier: notifier,
		urlTTL:   urlTTL,
		now:      time.Now,
	}
}

// ObjectKey builds the storage key for an export of project p.
func ObjectKey(userID, projectID uuid.UUID, name string, f Format, at time.Time) string {
	s := slug.Generate(name)
	if s == "" {
		s = "project"
	}
	return fmt.Sprintf("exports/%s/%s/%d-%s.%s", userID, projectID, at.Unix(), s, f)
}

// Export renders req.Project, uploads it and returns the stored record with
// a presigned URL.
func (e *Exporter) Export(ctx context.Context, req Request) (*models.Export, error) {
	if e.objects == nil {
		return nil, ErrStorageUnavailable
	}
	p := req.Project

	sections, err := Sections(p)
	if err != nil {
		return nil, fmt.Errorf("export project %s: %w", p.ID, err)
	}
	data, err := Render(req.Format, p.Name, sections)
	if err != nil {
		return nil, fmt.Errorf("export project %s: %w", p.ID, err)
	}

	key := ObjectKey(p.UserID, p.ID, p.Name, req.Format, e.now())
	if err := e.objects.Upload(ctx, key, req.Format.ContentType(), bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("export project %s: %w", p.ID, err)
	}

	url, err := e.objects.PresignedURL(ctx, key, e.urlTTL)
	if err != nil {
		e.discard(ctx, key)
		return nil, fmt.Errorf("export project %s: %w", p.ID, err)
	}

	rec, err := e.records.Create(&models.Export{
		ProjectID: p.ID,
		UserID:    p.UserID,
		Format:    string(req.Format),
		ObjectKey: key,
		SizeBytes: int64(len(data)),
	})
	if err != nil {
		e.discard(ctx, key)
		return nil, fmt.Errorf("export project %s: %w", p.ID, err)
	}
	rec.URL = url

	slog.Info("project exported", "project_id", p.ID, "format", req.Format, "key", key, "bytes", len(data))

	if req.Notify && e.notifier != nil && req.ChatID != 0 {
		text := fmt.Sprintf("%s (%s)\n%s", p.Name, req.Format, url)
		if err := e.notifier.SendMessage(ctx, req.ChatID, text); err != nil {
			slog.Warn("export notification failed", "project_id", p.ID, "error", err)
		}
	}
	return rec, nil
}

// History returns the latest exports of a project with fresh links.
// Records whose link cannot be signed are returned without a URL.
func (e *Exporter) History(ctx context.Context, userID, projectID uuid.UUID, limit int) ([]models.Export, error) {
	list, err := e.records.ListByProject(userID, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("export history %s: %w", projectID, err)
	}
	if e.objects == nil {
		return list, nil
	}
	for i := range list {
		url, err := e.objects.PresignedURL(ctx, list[i].ObjectKey, e.urlTTL)
		if err != nil {
			slog.Warn("presign export failed", "key", list[i].ObjectKey, "error", err)
			continue
		}
		list[i].URL = url
	}
	return list, nil
}

func (e *Exporter) discard(ctx context.Context, key string) {
	if err := e.objects.Delete(ctx, key); err != nil {
		slog.Warn("failed to remove orphaned export", "key", key, "error", err)
	}
}
