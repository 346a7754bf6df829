package services

import (
	"context"
	"errors"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/records"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/repomanager"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/timex"
)

// RecordService is the direct CRUD path for one record kind. It writes
// through the same store and timestamps as sync, so every change it makes
// reaches other devices on their next sync.
type RecordService[T models.Record, P models.Patch[T]] struct {
	kind      models.Kind
	db        dbx.Runner
	repo      func(dbx.DBTX) records.Repository[T]
	newRecord func() T
	now       func() time.Time
	logger    logging.Logger
}

type (
	IncomeService  = RecordService[*models.Income, models.IncomePatch]
	ExpenseService = RecordService[*models.Expense, models.ExpensePatch]
	NoteService    = RecordService[*models.Note, models.NotePatch]
	BazarService   = RecordService[*models.Bazar, models.BazarPatch]
)

func NewIncomeService(db dbx.Runner, m repomanager.RepositoryManager, logger logging.Logger) *IncomeService {
	return newRecordService[*models.Income, models.IncomePatch](models.KindIncome, db, m.Incomes, records.Incomes.New, logger)
}

func NewExpenseService(db dbx.Runner, m repomanager.RepositoryManager, logger logging.Logger) *ExpenseService {
	return newRecordService[*models.Expense, models.ExpensePatch](models.KindExpense, db, m.Expenses, records.Expenses.New, logger)
}

func NewNoteService(db dbx.Runner, m repomanager.RepositoryManager, logger logging.Logger) *NoteService {
	return newRecordService[*models.Note, models.NotePatch](models.KindNote, db, m.Notes, records.Notes.New, logger)
}

func NewBazarService(db dbx.Runner, m repomanager.RepositoryManager, logger logging.Logger) *BazarService {
	return newRecordService[*models.Bazar, models.BazarPatch](models.KindBazar, db, m.Bazar, records.Bazar.New, logger)
}

func newRecordService[T models.Record, P models.Patch[T]](
	kind models.Kind,
	db dbx.Runner,
	repo func(dbx.DBTX) records.Repository[T],
	newRecord func() T,
	logger logging.Logger,
) *RecordService[T, P] {
	return &RecordService[T, P]{
		kind:      kind,
		db:        db,
		repo:      repo,
		newRecord: newRecord,
		now:       timex.Now,
		logger:    logger.With("module", "records", "kind", kind),
	}
}

func (s *RecordService[T, P]) Kind() models.Kind {
	return s.kind
}

// List returns the user's live records.
func (s *RecordService[T, P]) List(ctx context.Context, userID string) ([]T, error) {
	return s.repo(s.db.Conn()).List(ctx, userID)
}

// Get returns a live record; soft-deleted ones are reported as not found.
func (s *RecordService[T, P]) Get(ctx context.Context, userID, id string) (T, error) {
	rec, err := s.repo(s.db.Conn()).GetByID(ctx, userID, id)
	if err != nil {
		return rec, err
	}
	if rec.GetMeta().IsDeleted {
		var zero T
		return zero, common.ErrorNotFound
	}
	return rec, nil
}

func (s *RecordService[T, P]) Create(ctx context.Context, userID string, p P) (T, error) {
	rec, err := buildRecord(s.newRecord, p, userID, s.now())
	if err != nil {
		return rec, err
	}
	if err := s.repo(s.db.Conn()).Create(ctx, rec); err != nil {
		s.logger.Error(ctx, "create failed", "user", userID, "error", err)
		var zero T
		return zero, err
	}
	return rec, nil
}

// Update merges p into a live record. Unlike sync there is no timestamp
// check: an interactive edit always targets the current server copy.
func (s *RecordService[T, P]) Update(ctx context.Context, userID, id string, p P) (T, error) {
	var out T
	err := s.db.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		rec, err := repo.GetByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if rec.GetMeta().IsDeleted {
			return common.ErrorNotFound
		}
		if err := mergeRecord(rec, p, s.now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrInvalidPayload) {
			s.logger.Error(ctx, "update failed", "user", userID, "id", id, "error", err)
		}
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete soft-deletes a live record.
func (s *RecordService[T, P]) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.repo(s.db.Conn()).SoftDelete(ctx, userID, id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

// buildRecord makes a new record owned by userID from a complete patch.
func buildRecord[T models.Record, P models.Patch[T]](newRecord func() T, p P, userID string, now time.Time) (T, error) {
	var zero T
	if err := p.Required(); err != nil {
		return zero, err
	}
	rec := newRecord()
	p.ApplyTo(rec)
	m := rec.GetMeta()
	m.UserID = userID
	m.CreatedAt = now
	m.Touch(now)
	if err := rec.Normalize(now); err != nil {
		return zero, err
	}
	return rec, nil
}

// mergeRecord overwrites the fields present in p and stamps the write.
func mergeRecord[T models.Record, P models.Patch[T]](rec T, p P, now time.Time) error {
	p.ApplyTo(rec)
	if err := rec.Normalize(now); err != nil {
		return err
	}
	rec.GetMeta().Touch(now)
	return nil
}
