package postgres

import (
	"context"
	"database/sql"

	"quizmaster/internal/infra/postgres/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Migrate applies every pending migration against dsn and returns the applied group.
// An empty group means the schema was already current.
func Migrate(ctx context.Context, dsn string) (*migrate.MigrationGroup, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	return migrator.Migrate(ctx)
}
