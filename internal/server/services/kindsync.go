package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/records"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/timex"
)

type applier interface {
	apply(ctx context.Context, userID string, changes []models.PendingChange) ([]models.IDMapping, []models.Conflict)
}

// kindSync applies pending changes for one record kind. P is the kind's
// patch type and is the only way client data reaches a record.
type kindSync[T models.Record, P models.Patch[T]] struct {
	kind      models.Kind
	db        dbx.Runner
	repo      func(dbx.DBTX) records.Repository[T]
	newRecord func() T
	now       func() time.Time
	logger    logging.Logger
}

func newKindSync[T models.Record, P models.Patch[T]](
	kind models.Kind,
	db dbx.Runner,
	repo func(dbx.DBTX) records.Repository[T],
	newRecord func() T,
	now func() time.Time,
	logger logging.Logger,
) *kindSync[T, P] {
	return &kindSync[T, P]{
		kind:      kind,
		db:        db,
		repo:      repo,
		newRecord: newRecord,
		now:       now,
		logger:    logger.With("kind", kind),
	}
}

func (k *kindSync[T, P]) since(ctx context.Context, userID string, since time.Time) ([]T, error) {
	recs, err := k.repo(k.db.Conn()).SelectUpdated(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.kind.Collection(), err)
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func (k *kindSync[T, P]) apply(ctx context.Context, userID string, changes []models.PendingChange) ([]models.IDMapping, []models.Conflict) {
	mappings := []models.IDMapping{}
	var conflicts []models.Conflict

	for _, ch := range changes {
		mapping, conflict := k.applyOne(ctx, userID, ch)
		if mapping != nil {
			mappings = append(mappings, *mapping)
		}
		if conflict != nil {
			conflicts = append(conflicts, *conflict)
		}
	}
	return mappings, conflicts
}

func (k *kindSync[T, P]) applyOne(ctx context.Context, userID string, ch models.PendingChange) (*models.IDMapping, *models.Conflict) {
	var (
		mapping  *models.IDMapping
		conflict *models.Conflict
		err      error
	)

	switch {
	case ch.Invalid != nil:
		err = ch.Invalid
	case ch.Action == models.ActionCreate:
		mapping, err = k.create(ctx, userID, ch)
	case ch.Action == models.ActionUpdate:
		conflict, err = k.update(ctx, userID, ch)
	case ch.Action == models.ActionDelete:
		err = k.delete(ctx, userID, ch)
	default:
		err = fmt.Errorf("%w: %q", common.ErrInvalidAction, ch.Action)
	}

	if err != nil {
		id := ch.ID
		if id == "" {
			id = ch.TempID
		}
		k.logger.Error(ctx, "failed to apply change",
			"user", userID, "action", ch.Action, "id", id, "error", err)
		return nil, &models.Conflict{
			Type:      models.ConflictError,
			ModelName: k.kind,
			ID:        id,
			Message:   "Failed to apply change",
			Error:     err.Error(),
		}
	}
	return mapping, conflict
}

func (k *kindSync[T, P]) create(ctx context.Context, userID string, ch models.PendingChange) (*models.IDMapping, error) {
	var p P
	if err := decodePatch(ch.Data, &p); err != nil {
		return nil, err
	}

	rec, err := buildRecord(k.newRecord, p, userID, k.now())
	if err != nil {
		return nil, err
	}

	if err := k.repo(k.db.Conn()).Create(ctx, rec); err != nil {
		return nil, err
	}
	if ch.TempID == "" {
		return nil, nil
	}
	return &models.IDMapping{TempID: ch.TempID, RealID: rec.GetMeta().ID}, nil
}

// update applies ch under a row lock unless the stored record was modified
// after the client's change, in which case the server copy wins. A change
// without a clientTimestamp has nothing to lose against and is applied.
func (k *kindSync[T, P]) update(ctx context.Context, userID string, ch models.PendingChange) (*models.Conflict, error) {
	var p P
	if err := decodePatch(ch.Data, &p); err != nil {
		return nil, err
	}
	clientTS, stamped, err := clientTimestamp(ch.ClientTimestamp)
	if err != nil {
		return nil, err
	}

	var conflict *models.Conflict
	err = k.db.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := k.repo(tx)

		rec, err := repo.GetByIDForUpdate(ctx, userID, ch.ID)
		if errors.Is(err, common.ErrorNotFound) {
			conflict = &models.Conflict{
				Type:      models.ConflictNotFound,
				ModelName: k.kind,
				ID:        ch.ID,
				Message:   "Record not found on server",
			}
			return nil
		}
		if err != nil {
			return err
		}

		m := rec.GetMeta()
		if stamped && m.UpdatedAt.After(clientTS) {
			serverTS := m.UpdatedAt
			conflict = &models.Conflict{
				Type:            models.ConflictTimestamp,
				ModelName:       k.kind,
				ID:              ch.ID,
				ServerTimestamp: &serverTS,
				ClientTimestamp: &clientTS,
				Resolution:      models.ResolutionServerWins,
				Message:         "Server version is newer, client changes ignored",
			}
			return nil
		}

		if err := mergeRecord(rec, p, k.now()); err != nil {
			return err
		}
		return repo.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return conflict, nil
}

// delete soft-deletes the record. A missing or foreign record is not an error.
func (k *kindSync[T, P]) delete(ctx context.Context, userID string, ch models.PendingChange) error {
	_, err := k.repo(k.db.Conn()).SoftDelete(ctx, userID, ch.ID, k.now())
	return err
}

func clientTimestamp(s string) (time.Time, bool, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false, nil
	}
	t, err := timex.ParseISO(s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: clientTimestamp: %v", common.ErrInvalidPayload, err)
	}
	return t, true, nil
}

// decodePatch fills p from raw. Absent or null data yields an empty patch.
func decodePatch(raw json.RawMessage, p any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return nil
}
