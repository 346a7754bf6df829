package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Clients read amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Income and Expense share the same ledger shape.
type Income struct {
	Meta
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
}

func (r *Income) Normalize(now time.Time) error {
	return normalizeLedger(r.Amount, &r.Description, &r.Category, &r.Date, now)
}

type Expense struct {
	Meta
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
}

func (r *Expense) Normalize(now time.Time) error {
	return normalizeLedger(r.Amount, &r.Description, &r.Category, &r.Date, now)
}

func normalizeLedger(amount decimal.Decimal, description, category *string, date *time.Time, now time.Time) error {
	*description = strings.TrimSpace(*description)
	*category = strings.TrimSpace(*category)
	if *description == "" {
		return emptyField("description")
	}
	if *category == "" {
		return emptyField("category")
	}
	if err := fitNumeric("amount", amount, 14, 2); err != nil {
		return err
	}
	if date.IsZero() {
		*date = now
	}
	return nil
}

// LedgerPatch is the allow-list for Income and Expense payloads.
type LedgerPatch struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Date        *time.Time       `json:"date"`
}

func (p LedgerPatch) Required() error {
	var missing []string
	if p.Amount == nil {
		missing = append(missing, "amount")
	}
	if p.Description == nil {
		missing = append(missing, "description")
	}
	if p.Category == nil {
		missing = append(missing, "category")
	}
	return missingFields(missing...)
}

func (p LedgerPatch) apply(amount *decimal.Decimal, description, category *string, date *time.Time) {
	if p.Amount != nil {
		*amount = *p.Amount
	}
	if p.Description != nil {
		*description = *p.Description
	}
	if p.Category != nil {
		*category = *p.Category
	}
	if p.Date != nil {
		*date = *p.Date
	}
}

type IncomePatch struct {
	LedgerPatch
}

func (p IncomePatch) ApplyTo(r *Income) {
	p.apply(&r.Amount, &r.Description, &r.Category, &r.Date)
}

type ExpensePatch struct {
	LedgerPatch
}

func (p ExpensePatch) ApplyTo(r *Expense) {
	p.apply(&r.Amount, &r.Description, &r.Category, &r.Date)
}
