package users

import (
	"context"
	"database/sql"
	"sync"

	"github.com/brizzai/moodlist/internal/users/migrations"
	"github.com/pressly/goose/v3"
)

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// migrate applies the embedded migrations under dir using the goose dialect.
func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}
