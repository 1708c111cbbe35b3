package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brizzai/moodlist/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists user records in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, db, "sqlite3", "sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, uid string) (*models.User, error) {
	var (
		user      models.User
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, display_name, avatar_url, access_token, refresh_token, profile_url, api_url, updated_at
		   FROM users WHERE uid = ?`, uid,
	).Scan(
		&user.UID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.AccessToken,
		&user.RefreshToken,
		&user.ProfileURL,
		&user.APIURL,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &user, nil
}

// Save upserts the full row; no column of a previous login survives.
func (s *SQLiteStore) Save(ctx context.Context, user *models.User) error {
	if err := validate(user); err != nil {
		return err
	}
	updatedAt := user.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (uid, display_name, avatar_url, access_token, refresh_token, profile_url, api_url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
		   display_name = excluded.display_name,
		   avatar_url = excluded.avatar_url,
		   access_token = excluded.access_token,
		   refresh_token = excluded.refresh_token,
		   profile_url = excluded.profile_url,
		   api_url = excluded.api_url,
		   updated_at = excluded.updated_at`,
		user.UID,
		user.DisplayName,
		user.AvatarURL,
		user.AccessToken,
		user.RefreshToken,
		user.ProfileURL,
		user.APIURL,
		updatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
