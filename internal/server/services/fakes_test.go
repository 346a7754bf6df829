package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/records"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/stats"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/users"
	"github.com/google/uuid"
)

// -------- test fakes --------

// memRepo is an in-memory records.Repository. It stores copies so a caller
// mutating a returned record does not change the store until it writes back.
type memRepo[T models.Record] struct {
	mu    sync.Mutex
	rows  map[string]T
	clone func(T) T

	selErr    error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	creates int
	updates int
}

func newMemRepo[T models.Record](clone func(T) T) *memRepo[T] {
	return &memRepo[T]{rows: map[string]T{}, clone: clone}
}

func clonePtr[E any](p *E) *E {
	c := *p
	return &c
}

func (r *memRepo[T]) put(rec T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rec.GetMeta().ID] = r.clone(rec)
}

func (r *memRepo[T]) get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[id]
	if !ok {
		return rec, false
	}
	return r.clone(rec), true
}

func (r *memRepo[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memRepo[T]) SelectUpdated(ctx context.Context, userID string, since time.Time) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selErr != nil {
		return nil, r.selErr
	}
	out := []T{}
	for _, rec := range r.rows {
		m := rec.GetMeta()
		if m.UserID == userID && m.UpdatedAt.After(since) {
			out = append(out, r.clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].GetMeta(), out[j].GetMeta()
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *memRepo[T]) GetByID(ctx context.Context, userID, id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if r.getErr != nil {
		return zero, r.getErr
	}
	rec, ok := r.rows[id]
	if !ok || rec.GetMeta().UserID != userID {
		return zero, common.ErrorNotFound
	}
	return r.clone(rec), nil
}

func (r *memRepo[T]) GetByIDForUpdate(ctx context.Context, userID, id string) (T, error) {
	return r.GetByID(ctx, userID, id)
}

func (r *memRepo[T]) Create(ctx context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	m := rec.GetMeta()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.rows[m.ID] = r.clone(rec)
	r.creates++
	return nil
}

func (r *memRepo[T]) Update(ctx context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	m := rec.GetMeta()
	cur, ok := r.rows[m.ID]
	if !ok || cur.GetMeta().UserID != m.UserID {
		return common.ErrorNotFound
	}
	r.rows[m.ID] = r.clone(rec)
	r.updates++
	return nil
}

func (r *memRepo[T]) SoftDelete(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	rec, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	m := rec.GetMeta()
	if m.UserID != userID || m.IsDeleted {
		return false, nil
	}
	m.IsDeleted = true
	m.Touch(at)
	return true, nil
}

func (r *memRepo[T]) List(ctx context.Context, userID string) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selErr != nil {
		return nil, r.selErr
	}
	out := []T{}
	for _, rec := range r.rows {
		m := rec.GetMeta()
		if m.UserID == userID && !m.IsDeleted {
			out = append(out, r.clone(rec))
		}
	}
	return out, nil
}

type fakeStatsRepo struct {
	stats.Repository
	totals map[models.Kind]stats.Total
	err    error
	calls  []statsCall
	mu     sync.Mutex
}

type statsCall struct {
	kind     models.Kind
	from, to time.Time
}

func (f *fakeStatsRepo) SumAmount(ctx context.Context, kind models.Kind, userID string, from, to time.Time) (stats.Total, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, statsCall{kind: kind, from: from, to: to})
	if f.err != nil {
		return stats.Total{}, f.err
	}
	return f.totals[kind], nil
}

type fakeManager struct {
	incomes  *memRepo[*models.Income]
	expenses *memRepo[*models.Expense]
	notes    *memRepo[*models.Note]
	bazar    *memRepo[*models.Bazar]
	stats    *fakeStatsRepo
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		incomes:  newMemRepo(clonePtr[models.Income]),
		expenses: newMemRepo(clonePtr[models.Expense]),
		notes:    newMemRepo(clonePtr[models.Note]),
		bazar:    newMemRepo(clonePtr[models.Bazar]),
		stats:    &fakeStatsRepo{totals: map[models.Kind]stats.Total{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository           { return nil }
func (m *fakeManager) Stats(dbx.DBTX) stats.Repository           { return m.stats }

func (m *fakeManager) Incomes(dbx.DBTX) records.Repository[*models.Income] {
	return m.incomes
}
func (m *fakeManager) Expenses(dbx.DBTX) records.Repository[*models.Expense] {
	return m.expenses
}
func (m *fakeManager) Notes(dbx.DBTX) records.Repository[*models.Note] {
	return m.notes
}
func (m *fakeManager) Bazar(dbx.DBTX) records.Repository[*models.Bazar] {
	return m.bazar
}

// fakeRunner runs transactional work inline; the repositories ignore the
// handle they are bound to.
type fakeRunner struct {
	mu  sync.Mutex
	txs int
	err error
}

func (r *fakeRunner) Conn() dbx.DBTX { return nil }

func (r *fakeRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	r.mu.Lock()
	r.txs++
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx, nil)
}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{t: start, step: time.Millisecond}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func (c *stepClock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}
