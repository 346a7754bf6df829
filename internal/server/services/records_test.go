package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newIncomeService(t *testing.T) (*IncomeService, *fakeManager, *stepClock) {
	t.Helper()
	m := newFakeManager()
	clock := newStepClock(t0)
	svc := NewIncomeService(&fakeRunner{}, m, logging.Nop{})
	svc.now = clock.Now
	return svc, m, clock
}

func TestRecordService_CreateAndGet(t *testing.T) {
	svc, m, clock := newIncomeService(t)

	amount := decimal.RequireFromString("1500.50")
	rec, err := svc.Create(context.Background(), alice, models.IncomePatch{LedgerPatch: models.LedgerPatch{
		Amount:      &amount,
		Description: ptr("salary"),
		Category:    ptr("job"),
	}})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, alice, rec.UserID)
	assert.Equal(t, clock.Last(), rec.UpdatedAt)
	assert.Equal(t, 1, m.incomes.len())

	got, err := svc.Get(context.Background(), alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "salary", got.Description)

	_, err = svc.Get(context.Background(), bob, rec.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRecordService_CreateRejectsIncompletePatch(t *testing.T) {
	svc, m, _ := newIncomeService(t)

	_, err := svc.Create(context.Background(), alice, models.IncomePatch{})
	assert.ErrorIs(t, err, common.ErrInvalidPayload)
	assert.Equal(t, 0, m.incomes.len())
}

func TestRecordService_CreateStoreError(t *testing.T) {
	svc, m, _ := newIncomeService(t)
	m.incomes.createErr = errors.New("db down")

	amount := decimal.NewFromInt(1)
	_, err := svc.Create(context.Background(), alice, models.IncomePatch{LedgerPatch: models.LedgerPatch{
		Amount: &amount, Description: ptr("a"), Category: ptr("b"),
	}})
	assert.Error(t, err)
}

func TestRecordService_UpdateMergesAndStamps(t *testing.T) {
	svc, m, clock := newIncomeService(t)
	m.incomes.put(income("i1", alice, t0.Add(-time.Hour), "old"))

	got, err := svc.Update(context.Background(), alice, "i1", models.IncomePatch{LedgerPatch: models.LedgerPatch{
		Description: ptr("new"),
	}})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Description)
	assert.Equal(t, "salary", got.Category)
	assert.Equal(t, clock.Last(), got.UpdatedAt)

	stored, _ := m.incomes.get("i1")
	assert.Equal(t, got, stored)
}

func TestRecordService_UpdateDeletedIsNotFound(t *testing.T) {
	svc, m, _ := newIncomeService(t)
	rec := income("i1", alice, t0, "old")
	rec.IsDeleted = true
	m.incomes.put(rec)

	_, err := svc.Update(context.Background(), alice, "i1", models.IncomePatch{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.Get(context.Background(), alice, "i1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRecordService_UpdateInvalid(t *testing.T) {
	svc, m, _ := newIncomeService(t)
	m.incomes.put(income("i1", alice, t0, "old"))

	_, err := svc.Update(context.Background(), alice, "i1", models.IncomePatch{LedgerPatch: models.LedgerPatch{
		Category: ptr(" "),
	}})
	assert.ErrorIs(t, err, common.ErrInvalidPayload)

	stored, _ := m.incomes.get("i1")
	assert.Equal(t, "salary", stored.Category)
}

func TestRecordService_DeleteIsSoft(t *testing.T) {
	svc, m, _ := newIncomeService(t)
	m.incomes.put(income("i1", alice, t0.Add(-time.Hour), "old"))

	require.NoError(t, svc.Delete(context.Background(), alice, "i1"))

	stored, ok := m.incomes.get("i1")
	require.True(t, ok)
	assert.True(t, stored.IsDeleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), alice, "i1"), common.ErrorNotFound)

	list, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordService_Kinds(t *testing.T) {
	m := newFakeManager()
	r := &fakeRunner{}

	assert.Equal(t, models.KindIncome, NewIncomeService(r, m, logging.Nop{}).Kind())
	assert.Equal(t, models.KindExpense, NewExpenseService(r, m, logging.Nop{}).Kind())
	assert.Equal(t, models.KindNote, NewNoteService(r, m, logging.Nop{}).Kind())
	assert.Equal(t, models.KindBazar, NewBazarService(r, m, logging.Nop{}).Kind())
}

func TestRecordService_WritesAreVisibleToSync(t *testing.T) {
	m := newFakeManager()
	r := &fakeRunner{}
	clock := newStepClock(t0)
	notes := NewNoteService(r, m, logging.Nop{})
	notes.now = clock.Now
	syncSvc := NewSyncService(r, m, logging.Nop{}, WithClock(clock.Now))

	n, err := notes.Create(context.Background(), alice, models.NotePatch{Title: ptr("t"), Description: ptr("d")})
	require.NoError(t, err)
	require.NoError(t, notes.Delete(context.Background(), alice, n.ID))

	changes, err := syncSvc.ChangesSince(context.Background(), alice, t0)
	require.NoError(t, err)
	require.Len(t, changes.Notes, 1)
	assert.True(t, changes.Notes[0].IsDeleted)
}
