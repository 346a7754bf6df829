// Package models holds the server-side domain types: the four synced record
// kinds, their typed patches, and the sync request/response shapes.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/shopspring/decimal"
)

// Meta is the bookkeeping every synced record carries. UpdatedAt is the
// record's lastModifiedAt and is the only input to conflict decisions.
type Meta struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	SyncedAt  time.Time `json:"syncedAt"`
	IsDeleted bool      `json:"isDeleted"`
}

func (m *Meta) GetMeta() *Meta {
	return m
}

// Touch stamps a write at now. UpdatedAt never moves backwards, so a server
// clock step cannot reorder a record's history.
func (m *Meta) Touch(now time.Time) {
	if now.After(m.UpdatedAt) {
		m.UpdatedAt = now
	}
	m.SyncedAt = now
}

// Record is implemented by pointers to the four record kinds.
type Record interface {
	GetMeta() *Meta
	// Normalize trims text fields, fills defaults relative to now and
	// validates the payload.
	Normalize(now time.Time) error
}

// Patch is a kind-specific set of client-supplied fields. Only fields the
// patch type declares can ever reach storage; anything else in the client
// payload is dropped during decoding.
type Patch[T Record] interface {
	// ApplyTo overwrites the fields present in the patch and leaves the rest.
	ApplyTo(rec T)
	// Required reports the fields a create must carry but this patch lacks.
	Required() error
}

func missingFields(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", common.ErrInvalidPayload, strings.Join(names, ", "))
}

func emptyField(name string) error {
	return fmt.Errorf("%w: %s must not be empty", common.ErrInvalidPayload, name)
}

// fitNumeric rejects values a NUMERIC(precision, scale) column would round
// or refuse.
func fitNumeric(name string, d decimal.Decimal, precision, scale int32) error {
	if !d.Equal(d.Truncate(scale)) {
		return fmt.Errorf("%w: %s allows at most %d decimal places", common.ErrInvalidPayload, name, scale)
	}
	if d.Abs().Cmp(decimal.New(1, precision-scale)) >= 0 {
		return fmt.Errorf("%w: %s is out of range", common.ErrInvalidPayload, name)
	}
	return nil
}
