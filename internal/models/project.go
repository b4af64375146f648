// Package models defines the persisted and transport shapes shared by the
// stores, the composition engine and the HTTP handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPublished ProjectStatus = "published"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusPublished, ProjectStatusArchived:
		return true
	}
	return false
}

// ProjectBlock is the stored form of a user's template choice for one block.
// Content holds the working text (the template content unless it was
// replaced by a generated version).
type ProjectBlock struct {
	ID         string            `json:"id"`
	BlockID    string            `json:"blockId"`
	TemplateID string            `json:"templateId"`
	Content    string            `json:"content"`
	Variables  map[string]string `json:"variables"`
	Order      int               `json:"order"`
}

// Project is the persisted shape of a user project. ContentType is a
// reference (catalog id) and must be resolved against the catalog before
// editing. Blocks are kept in insertion order.
type Project struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Status      ProjectStatus     `json:"status"`
	Blocks      []ProjectBlock    `json:"blocks"`
	Variables   map[string]string `json:"variables"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ProjectPatch is a partial update. Nil fields are left untouched.
type ProjectPatch struct {
	Name      *string            `json:"name,omitempty"`
	Status    *ProjectStatus     `json:"status,omitempty"`
	Blocks    *[]ProjectBlock    `json:"blocks,omitempty"`
	Variables *map[string]string `json:"variables,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Status == nil && p.Blocks == nil && p.Variables == nil
}

// ProjectStats counts a user's projects per status.
type ProjectStats struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Published int `json:"published"`
	Archived  int `json:"archived"`
}

// Export records an artefact uploaded for a project. URL is filled in when
// the record is returned to a client and is never stored.
type Export struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	Format    string    `json:"format"`
	ObjectKey string    `json:"objectKey"`
	SizeBytes int64     `json:"sizeBytes"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
