// Package users persists provider account records keyed by uid.
package users

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/brizzai/moodlist/internal/models"
)

// ErrNotFound is returned by Get when no record exists for the uid.
var ErrNotFound = errors.New("user not found")

// Store is the durable user record store. Save replaces any existing
// record for the same uid; concurrent saves are last-write-wins.
type Store interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}

func validate(user *models.User) error {
	if user == nil {
		return errors.New("user is required")
	}
	if strings.TrimSpace(user.UID) == "" {
		return errors.New("user uid is required")
	}
	if user.AccessToken == "" {
		return fmt.Errorf("user %s: access token is required", user.UID)
	}
	return nil
}

// objectKey maps a uid onto a path-safe key for file and object stores.
// The URL-safe base64 alphabet has no separators or dots, and distinct uids
// never share a key.
func objectKey(uid string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(uid)) + ".json"
}
