package users

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brizzai/moodlist/internal/models"
)

// FilesystemStore writes one JSON document per user under basePath/users.
type FilesystemStore struct {
	dir string
}

func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	dir := filepath.Join(basePath, "users")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create users path %s: %w", dir, err)
	}
	return &FilesystemStore{dir: dir}, nil
}

func (f *FilesystemStore) path(uid string) string {
	return filepath.Join(f.dir, objectKey(uid))
}

func (f *FilesystemStore) Get(ctx context.Context, uid string) (*models.User, error) {
	data, err := os.ReadFile(f.path(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// Save writes to a temp file and renames it so readers never observe a
// partial record.
func (f *FilesystemStore) Save(ctx context.Context, user *models.User) error {
	if err := validate(user); err != nil {
		return err
	}
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".user-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write user file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close user file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(user.UID)); err != nil {
		return fmt.Errorf("failed to replace user file: %w", err)
	}
	return nil
}
