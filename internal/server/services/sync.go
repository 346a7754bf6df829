package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/records"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/repomanager"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/timex"
	"golang.org/x/sync/errgroup"
)

// Epoch is the watermark of a client that has never synced.
var Epoch = time.Unix(0, 0).UTC()

// SyncService reconciles a client's offline changes with the server copy of
// its records. Each call is independent; concurrent calls for the same user
// are resolved record by record through last-write-wins.
type SyncService struct {
	logger logging.Logger
	clock  func() time.Time

	incomes  *kindSync[*models.Income, models.IncomePatch]
	expenses *kindSync[*models.Expense, models.ExpensePatch]
	notes    *kindSync[*models.Note, models.NotePatch]
	bazar    *kindSync[*models.Bazar, models.BazarPatch]
}

// SyncOption customises a SyncService.
type SyncOption func(*SyncService)

// WithClock replaces time.Now as the source of server timestamps.
func WithClock(clock func() time.Time) SyncOption {
	return func(s *SyncService) { s.clock = clock }
}

func NewSyncService(db dbx.Runner, m repomanager.RepositoryManager, logger logging.Logger, opts ...SyncOption) *SyncService {
	s := &SyncService{
		logger: logger.With("module", "sync"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.now
	s.incomes = newKindSync[*models.Income, models.IncomePatch](models.KindIncome, db, m.Incomes, records.Incomes.New, now, s.logger)
	s.expenses = newKindSync[*models.Expense, models.ExpensePatch](models.KindExpense, db, m.Expenses, records.Expenses.New, now, s.logger)
	s.notes = newKindSync[*models.Note, models.NotePatch](models.KindNote, db, m.Notes, records.Notes.New, now, s.logger)
	s.bazar = newKindSync[*models.Bazar, models.BazarPatch](models.KindBazar, db, m.Bazar, records.Bazar.New, now, s.logger)
	return s
}

func (s *SyncService) now() time.Time {
	return timex.Normalize(s.clock())
}

// ChangesSince returns every record of the user, deleted ones included, whose
// updated_at is strictly after since. The four kinds are read concurrently
// and any failure aborts the whole read.
func (s *SyncService) ChangesSince(ctx context.Context, userID string, since time.Time) (*models.Changes, error) {
	out := models.NewChanges()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Incomes, err = s.incomes.since(gctx, userID, since)
		return err
	})
	g.Go(func() (err error) {
		out.Expenses, err = s.expenses.since(gctx, userID, since)
		return err
	})
	g.Go(func() (err error) {
		out.Notes, err = s.notes.since(gctx, userID, since)
		return err
	})
	g.Go(func() (err error) {
		out.Bazar, err = s.bazar.since(gctx, userID, since)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read changes: %w", err)
	}
	return out, nil
}

// Apply runs the pending changes of every kind. Kinds are processed in
// parallel, changes within a kind in submission order. Failures never escape:
// each one becomes a conflict entry. Conflicts are reported in the order
// incomes, expenses, notes, bazar.
func (s *SyncService) Apply(ctx context.Context, userID string, pending *models.PendingChanges) (*models.IDMappings, []models.Conflict) {
	appliers := []applier{s.incomes, s.expenses, s.notes, s.bazar}
	mappings := make([][]models.IDMapping, len(models.Kinds))
	conflicts := make([][]models.Conflict, len(models.Kinds))

	var g errgroup.Group
	for i, kind := range models.Kinds {
		changes := pending.Of(kind)
		if len(changes) == 0 {
			continue
		}
		g.Go(func() error {
			mappings[i], conflicts[i] = appliers[i].apply(ctx, userID, changes)
			return nil
		})
	}
	_ = g.Wait()

	ids := models.NewIDMappings()
	all := []models.Conflict{}
	for i, kind := range models.Kinds {
		ids.Set(kind, mappings[i])
		all = append(all, conflicts[i]...)
	}
	return ids, all
}

// Sync is one full client cycle: read what changed since lastSyncAt, then
// apply the client's pending changes. The read happens first so the client's
// own writes are not echoed back in the same response. A nil lastSyncAt
// means the client has never synced.
func (s *SyncService) Sync(ctx context.Context, userID string, lastSyncAt *time.Time, pending *models.PendingChanges) (*models.SyncResult, error) {
	since := Epoch
	if lastSyncAt != nil {
		since = *lastSyncAt
	}
	syncTimestamp := s.now()

	changes, err := s.ChangesSince(ctx, userID, since)
	if err != nil {
		s.logger.Error(ctx, "sync failed", "user", userID, "error", err)
		return nil, err
	}

	ids, conflicts := models.NewIDMappings(), []models.Conflict{}
	if pending != nil {
		ids, conflicts = s.Apply(ctx, userID, pending)
	}

	s.logger.Info(ctx, "sync completed",
		"user", userID,
		"since", since,
		"changes", changes.Count().Total,
		"conflicts", len(conflicts),
	)

	return &models.SyncResult{
		SyncTimestamp: syncTimestamp,
		Changes:       changes,
		IDMappings:    ids,
		Conflicts:     conflicts,
	}, nil
}

// Status counts what a client holding watermark since would receive, without
// applying anything.
func (s *SyncService) Status(ctx context.Context, userID string, since time.Time) (*models.ChangeCount, error) {
	changes, err := s.ChangesSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return changes.Count(), nil
}
