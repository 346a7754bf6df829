// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/migrations"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/records"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/stats"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Open connects to PostgreSQL through the pgx database/sql driver and checks
// the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Stats returns a stats.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Stats(db dbx.DBTX) stats.Repository {
	return stats.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Incomes(db dbx.DBTX) records.Repository[*models.Income] {
	return records.NewPostgresRepository(db, records.Incomes)
}

func (m *PostgresRepositoryManager) Expenses(db dbx.DBTX) records.Repository[*models.Expense] {
	return records.NewPostgresRepository(db, records.Expenses)
}

func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) records.Repository[*models.Note] {
	return records.NewPostgresRepository(db, records.Notes)
}

func (m *PostgresRepositoryManager) Bazar(db dbx.DBTX) records.Repository[*models.Bazar] {
	return records.NewPostgresRepository(db, records.Bazar)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
