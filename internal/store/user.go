// Package store provides the PostgreSQL-backed persistence for users,
// projects and exports. Each store wraps a *sql.DB and exposes typed query
// methods; lookups return nil, nil when the row does not exist.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"contentwizard/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, telegram_id, username, first_name, last_name, photo_url, plan,
	default_niche, preferred_tone, preferred_length, language,
	created_at, updated_at, last_seen_at`

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.PhotoURL, &u.Plan,
		&u.Preferences.DefaultNiche, &u.Preferences.PreferredTone, &u.Preferences.PreferredLength,
		&u.Preferences.Language, &u.CreatedAt, &u.UpdatedAt, &u.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertTelegram creates the user for a Telegram account or refreshes the
// profile fields of an existing one. Plan and preferences of an existing
// user are left alone.
func (s *UserStore) UpsertTelegram(u *models.User) (*models.User, error) {
	out, err := scanUser(s.db.QueryRow(`
		INSERT INTO users (telegram_id, username, first_name, last_name, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			photo_url = EXCLUDED.photo_url,
			updated_at = NOW(),
			last_seen_at = NOW()
		RETURNING `+userColumns,
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.PhotoURL,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert telegram user: %w", err)
	}
	return out, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByTelegramID retrieves a user by Telegram account id. Returns nil if
// not found.
func (s *UserStore) FindByTelegramID(telegramID int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by telegram id: %w", err)
	}
	return u, nil
}

// UpdatePreferences replaces the user's constructor defaults. Returns nil if
// the user does not exist.
func (s *UserStore) UpdatePreferences(id uuid.UUID, p models.Preferences) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`
		UPDATE users SET
			default_niche = $2,
			preferred_tone = $3,
			preferred_length = $4,
			language = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, p.DefaultNiche, p.PreferredTone, p.PreferredLength, p.Language,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return u, nil
}

// Delete removes a user and, through the foreign keys, their projects and
// exports.
func (s *UserStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
