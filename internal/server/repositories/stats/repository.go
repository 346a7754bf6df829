package stats

import (
	"context"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/shopspring/decimal"
)

// Total is an amount aggregate over a date window.
type Total struct {
	Sum   decimal.Decimal
	Count int
}

type Repository interface {
	// SumAmount totals live Income or Expense records dated in [from, to).
	SumAmount(ctx context.Context, kind models.Kind, userID string, from, to time.Time) (Total, error)
}
