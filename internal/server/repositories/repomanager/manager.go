package repomanager

import (
	"context"
	"database/sql"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/records"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/stats"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Stats(db dbx.DBTX) stats.Repository
	Incomes(db dbx.DBTX) records.Repository[*models.Income]
	Expenses(db dbx.DBTX) records.Repository[*models.Expense]
	Notes(db dbx.DBTX) records.Repository[*models.Note]
	Bazar(db dbx.DBTX) records.Repository[*models.Bazar]
}
