package records

import "github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"

// Table describes how one record kind maps onto its SQL table. Columns lists
// the payload columns only; the bookkeeping columns are shared by every kind.
type Table[T models.Record] struct {
	Name    string
	Columns []string
	OrderBy string
	New     func() T
	// Fields returns scan destinations for Columns, in order.
	Fields func(rec T) []any
	// Values returns the values written to Columns, in order.
	Values func(rec T) []any
}

var Incomes = Table[*models.Income]{
	Name:    "incomes",
	Columns: []string{"amount", "description", "category", "date"},
	OrderBy: "date DESC, created_at DESC",
	New:     func() *models.Income { return &models.Income{} },
	Fields: func(r *models.Income) []any {
		return []any{&r.Amount, &r.Description, &r.Category, &r.Date}
	},
	Values: func(r *models.Income) []any {
		return []any{r.Amount, r.Description, r.Category, r.Date}
	},
}

var Expenses = Table[*models.Expense]{
	Name:    "expenses",
	Columns: []string{"amount", "description", "category", "date"},
	OrderBy: "date DESC, created_at DESC",
	New:     func() *models.Expense { return &models.Expense{} },
	Fields: func(r *models.Expense) []any {
		return []any{&r.Amount, &r.Description, &r.Category, &r.Date}
	},
	Values: func(r *models.Expense) []any {
		return []any{r.Amount, r.Description, r.Category, r.Date}
	},
}

var Notes = Table[*models.Note]{
	Name:    "notes",
	Columns: []string{"title", "description", "notification_date", "is_notified"},
	OrderBy: "created_at DESC",
	New:     func() *models.Note { return &models.Note{} },
	Fields: func(r *models.Note) []any {
		return []any{&r.Title, &r.Description, &r.NotificationDate, &r.IsNotified}
	},
	Values: func(r *models.Note) []any {
		return []any{r.Title, r.Description, r.NotificationDate, r.IsNotified}
	},
}

var Bazar = Table[*models.Bazar]{
	Name:    "bazar",
	Columns: []string{"item", "quantity", "price", "date"},
	OrderBy: "date DESC, created_at DESC",
	New:     func() *models.Bazar { return &models.Bazar{} },
	Fields: func(r *models.Bazar) []any {
		return []any{&r.Item, &r.Quantity, &r.Price, &r.Date}
	},
	Values: func(r *models.Bazar) []any {
		return []any{r.Item, r.Quantity, r.Price, r.Date}
	},
}
