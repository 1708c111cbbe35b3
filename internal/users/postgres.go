package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/moodlist/internal/models"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists user records in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and runs the embedded goose migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrate(ctx, db, "pgx", "postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Get(ctx context.Context, uid string) (*models.User, error) {
	query :=
		`SELECT uid, display_name, avatar_url, access_token, refresh_token, profile_url, api_url, updated_at
		 FROM users
		 WHERE uid = $1`

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, uid).Scan(
		&user.UID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.AccessToken,
		&user.RefreshToken,
		&user.ProfileURL,
		&user.APIURL,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func (s *PostgresStore) Save(ctx context.Context, user *models.User) error {
	if err := validate(user); err != nil {
		return err
	}
	updatedAt := user.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query :=
		`INSERT INTO users (uid, display_name, avatar_url, access_token, refresh_token, profile_url, api_url, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (uid) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   avatar_url = EXCLUDED.avatar_url,
		   access_token = EXCLUDED.access_token,
		   refresh_token = EXCLUDED.refresh_token,
		   profile_url = EXCLUDED.profile_url,
		   api_url = EXCLUDED.api_url,
		   updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		user.UID,
		user.DisplayName,
		user.AvatarURL,
		user.AccessToken,
		user.RefreshToken,
		user.ProfileURL,
		user.APIURL,
		updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
