package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Demo account created by Seed for local development. The telegram id is
// outside the range Telegram assigns to real accounts.
const (
	DemoTelegramID  int64 = 1
	demoContentType       = "lead-magnet"
)

// Seed creates a demo user with one empty draft project when the users
// table is empty. It is only called in development.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow(`
		INSERT INTO users (telegram_id, username, first_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, DemoTelegramID, "demo", "Demo").Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO projects (user_id, name, content_type)
		VALUES ($1, $2, $3)
	`, userID, "Демо лид-магнит", demoContentType)
	if err != nil {
		return fmt.Errorf("seed insert project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo user", "telegram_id", DemoTelegramID)
	return nil
}
