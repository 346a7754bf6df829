package services

import (
	"context"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PeriodTotal is the sum of one ledger kind over a calendar period.
type PeriodTotal struct {
	Label string
	From  time.Time
	To    time.Time
	Total decimal.Decimal
	Count int
}

type NetBalance struct {
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// StatsService computes dashboard aggregates. Periods follow the calendar of
// the clock's location.
type StatsService struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
	clock       func() time.Time
}

func NewStatsService(db dbx.Runner, m repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: m, clock: time.Now}
}

func (s *StatsService) TodayIncome(ctx context.Context, userID string) (*PeriodTotal, error) {
	from, to := dayBounds(s.clock())
	return s.total(ctx, models.KindIncome, userID, from, to, from.Format("2006-01-02"))
}

func (s *StatsService) MonthlyIncome(ctx context.Context, userID string) (*PeriodTotal, error) {
	from, to := monthBounds(s.clock())
	return s.total(ctx, models.KindIncome, userID, from, to, from.Format("January 2006"))
}

// MonthlyNet is this month's income minus this month's expenses.
func (s *StatsService) MonthlyNet(ctx context.Context, userID string) (*NetBalance, error) {
	from, to := monthBounds(s.clock())
	label := from.Format("January 2006")

	var income, expense *PeriodTotal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = s.total(gctx, models.KindIncome, userID, from, to, label)
		return err
	})
	g.Go(func() (err error) {
		expense, err = s.total(gctx, models.KindExpense, userID, from, to, label)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &NetBalance{
		Label:   label,
		Income:  income.Total,
		Expense: expense.Total,
		Net:     income.Total.Sub(expense.Total),
	}, nil
}

func (s *StatsService) total(ctx context.Context, kind models.Kind, userID string, from, to time.Time, label string) (*PeriodTotal, error) {
	t, err := s.repomanager.Stats(s.db.Conn()).SumAmount(ctx, kind, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &PeriodTotal{Label: label, From: from, To: to, Total: t.Sum, Count: t.Count}, nil
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}
