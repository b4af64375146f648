// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"contentwizard/internal/models"
)

// ProjectStore persists projects. Every query is scoped to the owning user,
// so a project id belonging to someone else behaves like a missing one.
// Writes are last-write-wins; there is no version check.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectColumns = `id, user_id, name, content_type, status, blocks, variables, created_at, updated_at`

func scanProject(scanner interface{ Scan(...any) error }) (*models.Project, error) {
	var (
		p         models.Project
		blocks    []byte
		variables []byte
	)
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Name, &p.ContentType, &p.Status,
		&blocks, &variables, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocks, &p.Blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	if err := json.Unmarshal(variables, &p.Variables); err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}
	if p.Blocks == nil {
		p.Blocks = []models.ProjectBlock{}
	}
	if p.Variables == nil {
		p.Variables = map[string]string{}
	}
	return &p, nil
}

func encodeBlocks(blocks []models.ProjectBlock) ([]byte, error) {
	if blocks == nil {
		blocks = []models.ProjectBlock{}
	}
	return json.Marshal(blocks)
}

func encodeVariables(vars map[string]string) ([]byte, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return json.Marshal(vars)
}

// Create inserts a project and returns the stored row, whose id and
// timestamps are authoritative. A zero ID is generated by the database.
func (s *ProjectStore) Create(p *models.Project) (*models.Project, error) {
	blocks, err := encodeBlocks(p.Blocks)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	vars, err := encodeVariables(p.Variables)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	status := p.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	out, err := scanProject(s.db.QueryRow(`
		INSERT INTO projects (id, user_id, name, content_type, status, blocks, variables)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+projectColumns,
		id, p.UserID, p.Name, p.ContentType, status, blocks, vars,
	))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return out, nil
}

// Get returns a user's project. Returns nil if not found.
func (s *ProjectStore) Get(userID, id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns a user's projects, most recently updated first. An empty
// status lists every status.
func (s *ProjectStore) List(userID uuid.UUID, status models.ProjectStatus) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT `+projectColumns+` FROM projects
		WHERE user_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY updated_at DESC
	`, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Update applies a partial update and returns the stored row. Returns nil
// if the project does not exist for this user.
func (s *ProjectStore) Update(userID, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	var name, status, blocks, vars any
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	if patch.Blocks != nil {
		b, err := encodeBlocks(*patch.Blocks)
		if err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
		blocks = b
	}
	if patch.Variables != nil {
		v, err := encodeVariables(*patch.Variables)
		if err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
		vars = v
	}

	p, err := scanProject(s.db.QueryRow(`
		UPDATE projects SET
			name = COALESCE($3::varchar, name),
			status = COALESCE($4::varchar, status),
			blocks = COALESCE($5::jsonb, blocks),
			variables = COALESCE($6::jsonb, variables),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+projectColumns,
		id, userID, name, status, blocks, vars,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes a user's project. It reports whether a row was deleted.
func (s *ProjectStore) Delete(userID, id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return n > 0, nil
}

// Stats counts a user's projects per status.
func (s *ProjectStore) Stats(userID uuid.UUID) (models.ProjectStats, error) {
	var st models.ProjectStats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'archived')
		FROM projects WHERE user_id = $1
	`, userID).Scan(&st.Total, &st.Draft, &st.Published, &st.Archived)
	if err != nil {
		return st, fmt.Errorf("project stats: %w", err)
	}
	return st, nil
}
