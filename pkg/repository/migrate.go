package repository

import (
	"embed"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

// Migrate applies every pending migration found under root in files.
func Migrate(db *sqlx.DB, files embed.FS, root string) (int, error) {
	migrations := migrate.EmbedFileSystemMigrationSource{
		FileSystem: files,
		Root:       root,
	}
	n, err := migrate.Exec(db.DB, "postgres", migrations, migrate.Up)
	if err != nil {
		return n, errors.Wrap(err, "apply migrations")
	}
	return n, nil
}
