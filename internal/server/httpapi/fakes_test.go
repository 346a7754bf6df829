package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/auth"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	aliceID    = "11111111-1111-1111-1111-111111111111"
)

type fakeUsers struct {
	known map[string]bool
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: id}, nil
}

type fakeSync struct {
	gotUser    string
	gotLast    *time.Time
	gotPending *models.PendingChanges
	gotSince   time.Time

	result *models.SyncResult
	count  *models.ChangeCount
	err    error
}

func (f *fakeSync) Sync(_ context.Context, userID string, lastSyncAt *time.Time, pending *models.PendingChanges) (*models.SyncResult, error) {
	f.gotUser, f.gotLast, f.gotPending = userID, lastSyncAt, pending
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSync) Status(_ context.Context, userID string, since time.Time) (*models.ChangeCount, error) {
	f.gotUser, f.gotSince = userID, since
	if f.err != nil {
		return nil, f.err
	}
	return f.count, nil
}

type fakeStats struct {
	today   *services.PeriodTotal
	monthly *services.PeriodTotal
	net     *services.NetBalance
	err     error
}

func (f *fakeStats) TodayIncome(context.Context, string) (*services.PeriodTotal, error) {
	return f.today, f.err
}

func (f *fakeStats) MonthlyIncome(context.Context, string) (*services.PeriodTotal, error) {
	return f.monthly, f.err
}

func (f *fakeStats) MonthlyNet(context.Context, string) (*services.NetBalance, error) {
	return f.net, f.err
}

// fakeIncomes embeds the interface so tests only override what they use.
type fakeIncomes struct {
	RecordService[*models.Income, models.IncomePatch]

	list    []*models.Income
	rec     *models.Income
	patch   models.IncomePatch
	gotID   string
	gotUser string
	err     error
}

func (f *fakeIncomes) List(_ context.Context, userID string) ([]*models.Income, error) {
	f.gotUser = userID
	return f.list, f.err
}

func (f *fakeIncomes) Get(_ context.Context, userID, id string) (*models.Income, error) {
	f.gotUser, f.gotID = userID, id
	return f.rec, f.err
}

func (f *fakeIncomes) Create(_ context.Context, userID string, p models.IncomePatch) (*models.Income, error) {
	f.gotUser, f.patch = userID, p
	return f.rec, f.err
}

func (f *fakeIncomes) Update(_ context.Context, userID, id string, p models.IncomePatch) (*models.Income, error) {
	f.gotUser, f.gotID, f.patch = userID, id, p
	return f.rec, f.err
}

func (f *fakeIncomes) Delete(_ context.Context, userID, id string) error {
	f.gotUser, f.gotID = userID, id
	return f.err
}

type harness struct {
	sync    *fakeSync
	stats   *fakeStats
	users   *fakeUsers
	incomes *fakeIncomes
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sync:    &fakeSync{},
		stats:   &fakeStats{},
		users:   &fakeUsers{known: map[string]bool{aliceID: true}},
		incomes: &fakeIncomes{},
	}
	h.handler = NewRouter(Services{
		Sync:    h.sync,
		Stats:   h.stats,
		Users:   h.users,
		Incomes: h.incomes,
	}, logging.Nop{}, testSecret, 1<<10)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
		require.NoError(t, err)
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}
