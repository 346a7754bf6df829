package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bazar is a single shopping-list purchase.
type Bazar struct {
	Meta
	Item     string          `json:"item"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"date"`
}

func (r *Bazar) Normalize(now time.Time) error {
	r.Item = strings.TrimSpace(r.Item)
	if r.Item == "" {
		return emptyField("item")
	}
	if err := fitNumeric("quantity", r.Quantity, 14, 3); err != nil {
		return err
	}
	if err := fitNumeric("price", r.Price, 14, 2); err != nil {
		return err
	}
	if r.Date.IsZero() {
		r.Date = now
	}
	return nil
}

type BazarPatch struct {
	Item     *string          `json:"item"`
	Quantity *decimal.Decimal `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Date     *time.Time       `json:"date"`
}

func (p BazarPatch) Required() error {
	var missing []string
	if p.Item == nil {
		missing = append(missing, "item")
	}
	if p.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if p.Price == nil {
		missing = append(missing, "price")
	}
	return missingFields(missing...)
}

func (p BazarPatch) ApplyTo(r *Bazar) {
	if p.Item != nil {
		r.Item = *p.Item
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
}
