// Package httpapi is the JSON-over-HTTP surface of the server: the sync
// endpoints, per-kind CRUD routes and dashboard stats, all behind a bearer
// token gate.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type SyncService interface {
	Sync(ctx context.Context, userID string, lastSyncAt *time.Time, pending *models.PendingChanges) (*models.SyncResult, error)
	Status(ctx context.Context, userID string, since time.Time) (*models.ChangeCount, error)
}

type StatsService interface {
	TodayIncome(ctx context.Context, userID string) (*services.PeriodTotal, error)
	MonthlyIncome(ctx context.Context, userID string) (*services.PeriodTotal, error)
	MonthlyNet(ctx context.Context, userID string) (*services.NetBalance, error)
}

// RecordService is the CRUD contract of one record kind.
type RecordService[T models.Record, P models.Patch[T]] interface {
	List(ctx context.Context, userID string) ([]T, error)
	Get(ctx context.Context, userID, id string) (T, error)
	Create(ctx context.Context, userID string, p P) (T, error)
	Update(ctx context.Context, userID, id string, p P) (T, error)
	Delete(ctx context.Context, userID, id string) error
}

// UserLookup confirms that a token's subject still has an account.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Services struct {
	Sync     SyncService
	Stats    StatsService
	Users    UserLookup
	Incomes  RecordService[*models.Income, models.IncomePatch]
	Expenses RecordService[*models.Expense, models.ExpensePatch]
	Notes    RecordService[*models.Note, models.NotePatch]
	Bazar    RecordService[*models.Bazar, models.BazarPatch]
}

type Router struct {
	services        Services
	logger          logging.Logger
	secretKey       []byte
	maxRequestBytes int64
	clock           func() time.Time
}

func NewRouter(svcs Services, logger logging.Logger, secretKey string, maxRequestBytes int64) http.Handler {
	r := &Router{
		services:        svcs,
		logger:          logger.With("module", "http"),
		secretKey:       []byte(secretKey),
		maxRequestBytes: maxRequestBytes,
		clock:           time.Now,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(r.logRequests)
	mux.Use(middleware.Recoverer)
	mux.Use(r.limitBody)

	mux.Get("/", r.handleRoot)

	mux.Route("/api", func(api chi.Router) {
		api.Use(r.authMiddleware)

		api.Post("/sync", r.handleSync)
		api.Get("/sync/status", r.handleSyncStatus)

		api.Get("/stats/monthly/net", r.handleMonthlyNet)

		api.Route("/income", func(in chi.Router) {
			in.Get("/stats/today", r.handleTodayIncome)
			in.Get("/stats/monthly", r.handleMonthlyIncome)
			recordRoutes(in, svcs.Incomes, names{"Income", "income", "incomes"}, r.logger)
		})
		api.Route("/expense", func(ex chi.Router) {
			recordRoutes(ex, svcs.Expenses, names{"Expense", "expense", "expenses"}, r.logger)
		})
		api.Route("/notes", func(nt chi.Router) {
			recordRoutes(nt, svcs.Notes, names{"Note", "note", "notes"}, r.logger)
		})
		api.Route("/bazar", func(bz chi.Router) {
			recordRoutes(bz, svcs.Bazar, names{"Bazar item", "bazar", "bazarItems"}, r.logger)
		})
	})

	return mux
}

func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Amar Hisab API is running",
	})
}
