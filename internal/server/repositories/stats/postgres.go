// Package stats aggregates ledger amounts for the dashboard routes.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var ledgerTables = map[models.Kind]string{
	models.KindIncome:  "incomes",
	models.KindExpense: "expenses",
}

func (r *PostgresRepository) SumAmount(ctx context.Context, kind models.Kind, userID string, from, to time.Time) (Total, error) {
	table, ok := ledgerTables[kind]
	if !ok {
		return Total{}, fmt.Errorf("no amount column for %s", kind)
	}

	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM %s
		 WHERE user_id = $1 AND NOT is_deleted AND date >= $2 AND date < $3`, table)

	var t Total
	if err := r.db.QueryRowContext(ctx, query, userID, from.UTC(), to.UTC()).Scan(&t.Sum, &t.Count); err != nil {
		return Total{}, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
