package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"contentwizard/internal/models"
)

// ExportStore keeps a history of exported artefacts per project.
type ExportStore struct {
	db *sql.DB
}

// NewExportStore creates a new ExportStore with the given database connection.
func NewExportStore(db *sql.DB) *ExportStore {
	return &ExportStore{db: db}
}

const exportColumns = `id, project_id, user_id, format, object_key, size_bytes, created_at`

// Create records an export and returns it with its generated id.
func (s *ExportStore) Create(e *models.Export) (*models.Export, error) {
	out := *e
	err := s.db.QueryRow(`
		INSERT INTO exports (project_id, user_id, format, object_key, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+exportColumns,
		e.ProjectID, e.UserID, e.Format, e.ObjectKey, e.SizeBytes,
	).Scan(&out.ID, &out.ProjectID, &out.UserID, &out.Format, &out.ObjectKey, &out.SizeBytes, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create export: %w", err)
	}
	return &out, nil
}

// ListByProject returns a user's exports of one project, newest first.
func (s *ExportStore) ListByProject(userID, projectID uuid.UUID, limit int) ([]models.Export, error) {
	rows, err := s.db.Query(`
		SELECT `+exportColumns+` FROM exports
		WHERE project_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, projectID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	exports := []models.Export{}
	for rows.Next() {
		var e models.Export
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.Format, &e.ObjectKey, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}
