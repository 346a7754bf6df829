// Package records provides the PostgreSQL-backed entity store shared by the
// four synced record kinds. One generic repository is instantiated per kind
// from a Table schema.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/timex"
	"github.com/google/uuid"
)

const metaColumns = "id, user_id, created_at, updated_at, synced_at, is_deleted"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository[T models.Record] struct {
	db    dbx.DBTX
	table Table[T]

	selectUpdated string
	selectByID    string
	selectList    string
	insert        string
	update        string
	softDelete    string
}

// NewPostgresRepository binds table to db and prepares its SQL text.
func NewPostgresRepository[T models.Record](db dbx.DBTX, table Table[T]) *PostgresRepository[T] {
	columns := metaColumns + ", " + strings.Join(table.Columns, ", ")
	selectFrom := fmt.Sprintf("SELECT %s FROM %s", columns, table.Name)

	n := 6 + len(table.Columns)
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sets := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+6)
	}

	return &PostgresRepository[T]{
		db:            db,
		table:         table,
		selectUpdated: selectFrom + " WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at ASC, id ASC",
		selectByID:    selectFrom + " WHERE id = $1 AND user_id = $2",
		selectList:    selectFrom + " WHERE user_id = $1 AND NOT is_deleted ORDER BY " + table.OrderBy,
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table.Name, columns, strings.Join(placeholders, ", ")),
		update: fmt.Sprintf("UPDATE %s SET updated_at = $3, synced_at = $4, is_deleted = $5, %s WHERE id = $1 AND user_id = $2",
			table.Name, strings.Join(sets, ", ")),
		softDelete: fmt.Sprintf("UPDATE %s SET is_deleted = TRUE, updated_at = GREATEST(updated_at, $3), synced_at = $3 WHERE id = $1 AND user_id = $2 AND NOT is_deleted",
			table.Name),
	}
}

func (r *PostgresRepository[T]) SelectUpdated(ctx context.Context, userID string, since time.Time) ([]T, error) {
	return r.query(ctx, r.selectUpdated, userID, timex.Normalize(since))
}

func (r *PostgresRepository[T]) List(ctx context.Context, userID string) ([]T, error) {
	return r.query(ctx, r.selectList, userID)
}

func (r *PostgresRepository[T]) GetByID(ctx context.Context, userID, id string) (T, error) {
	return r.get(ctx, r.selectByID, userID, id)
}

func (r *PostgresRepository[T]) GetByIDForUpdate(ctx context.Context, userID, id string) (T, error) {
	return r.get(ctx, r.selectByID+" FOR UPDATE", userID, id)
}

// Create inserts rec, assigning a fresh uuid when it has no id yet.
func (r *PostgresRepository[T]) Create(ctx context.Context, rec T) error {
	m := rec.GetMeta()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	args := append([]any{
		m.ID, m.UserID,
		timex.Normalize(m.CreatedAt), timex.Normalize(m.UpdatedAt), timex.Normalize(m.SyncedAt),
		m.IsDeleted,
	}, r.table.Values(rec)...)

	if _, err := r.db.ExecContext(ctx, r.insert, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update writes the payload columns and bookkeeping of rec. Zero matched rows
// yields common.ErrorNotFound.
func (r *PostgresRepository[T]) Update(ctx context.Context, rec T) error {
	m := rec.GetMeta()
	if !validID(m.ID) {
		return common.ErrorNotFound
	}
	args := append([]any{
		m.ID, m.UserID,
		timex.Normalize(m.UpdatedAt), timex.Normalize(m.SyncedAt), m.IsDeleted,
	}, r.table.Values(rec)...)

	res, err := r.db.ExecContext(ctx, r.update, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository[T]) SoftDelete(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, r.softDelete, id, userID, timex.Normalize(at))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository[T]) get(ctx context.Context, query, userID, id string) (T, error) {
	var zero T
	if !validID(id) {
		return zero, common.ErrorNotFound
	}
	rec, err := r.scan(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, common.ErrorNotFound
		}
		return zero, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.table.Name, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository[T]) scan(s scanner) (T, error) {
	rec := r.table.New()
	m := rec.GetMeta()
	dest := append([]any{&m.ID, &m.UserID, &m.CreatedAt, &m.UpdatedAt, &m.SyncedAt, &m.IsDeleted},
		r.table.Fields(rec)...)
	if err := s.Scan(dest...); err != nil {
		var zero T
		return zero, err
	}
	m.CreatedAt = timex.Normalize(m.CreatedAt)
	m.UpdatedAt = timex.Normalize(m.UpdatedAt)
	m.SyncedAt = timex.Normalize(m.SyncedAt)
	return rec, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
