package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
)

// Kind names a synced record collection. Its value doubles as the
// modelName reported in conflicts.
type Kind string

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"
	KindNote    Kind = "Note"
	KindBazar   Kind = "Bazar"
)

// Kinds lists the collections in the order responses report them.
var Kinds = []Kind{KindIncome, KindExpense, KindNote, KindBazar}

// Collection is the JSON key a kind uses in sync payloads.
func (k Kind) Collection() string {
	switch k {
	case KindIncome:
		return "incomes"
	case KindExpense:
		return "expenses"
	case KindNote:
		return "notes"
	case KindBazar:
		return "bazar"
	default:
		return string(k)
	}
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PendingChange is one client-side mutation awaiting upload. ID addresses the
// server record for update/delete; TempID is the client's handle for a create.
// ClientTimestamp is kept as sent and parsed when the change is applied.
type PendingChange struct {
	ID              string          `json:"_id,omitempty"`
	TempID          string          `json:"tempId,omitempty"`
	Action          Action          `json:"action"`
	Data            json.RawMessage `json:"data,omitempty"`
	ClientTimestamp string          `json:"clientTimestamp,omitempty"`

	// Invalid is set when the change itself could not be decoded. Such a
	// change is reported as an error conflict; the rest of the batch still runs.
	Invalid error `json:"-"`
}

// UnmarshalJSON never fails: a malformed change only poisons itself.
func (c *PendingChange) UnmarshalJSON(b []byte) error {
	*c = PendingChange{}

	var raw struct {
		ID              json.RawMessage `json:"_id"`
		TempID          json.RawMessage `json:"tempId"`
		Action          json.RawMessage `json:"action"`
		Data            json.RawMessage `json:"data"`
		ClientTimestamp json.RawMessage `json:"clientTimestamp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		c.Invalid = fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
		return nil
	}

	var action string
	for _, f := range []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"_id", raw.ID, &c.ID},
		{"tempId", raw.TempID, &c.TempID},
		{"action", raw.Action, &action},
		{"clientTimestamp", raw.ClientTimestamp, &c.ClientTimestamp},
	} {
		v, err := scalarString(f.raw)
		if err != nil && c.Invalid == nil {
			c.Invalid = fmt.Errorf("%w: %s %v", common.ErrInvalidPayload, f.name, err)
		}
		*f.dst = v
	}
	c.Action = Action(action)
	c.Data = raw.Data
	return nil
}

// scalarString reads a JSON string or number as text. Absent and null read
// as "".
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", errors.New("must be a string")
	}
}

type PendingChanges struct {
	Incomes  []PendingChange `json:"incomes,omitempty"`
	Expenses []PendingChange `json:"expenses,omitempty"`
	Notes    []PendingChange `json:"notes,omitempty"`
	Bazar    []PendingChange `json:"bazar,omitempty"`
}

// Of returns the batch submitted for kind k.
func (p *PendingChanges) Of(k Kind) []PendingChange {
	if p == nil {
		return nil
	}
	switch k {
	case KindIncome:
		return p.Incomes
	case KindExpense:
		return p.Expenses
	case KindNote:
		return p.Notes
	case KindBazar:
		return p.Bazar
	}
	return nil
}

// Changes is the server-side delta returned to a syncing client. Every slice
// is non-nil so the wire form always carries four arrays.
type Changes struct {
	Incomes  []*Income  `json:"incomes"`
	Expenses []*Expense `json:"expenses"`
	Notes    []*Note    `json:"notes"`
	Bazar    []*Bazar   `json:"bazar"`
}

func NewChanges() *Changes {
	return &Changes{
		Incomes:  []*Income{},
		Expenses: []*Expense{},
		Notes:    []*Note{},
		Bazar:    []*Bazar{},
	}
}

func (c *Changes) Count() *ChangeCount {
	cc := &ChangeCount{
		Incomes:  len(c.Incomes),
		Expenses: len(c.Expenses),
		Notes:    len(c.Notes),
		Bazar:    len(c.Bazar),
	}
	cc.Total = cc.Incomes + cc.Expenses + cc.Notes + cc.Bazar
	return cc
}

type ChangeCount struct {
	Incomes  int `json:"incomes"`
	Expenses int `json:"expenses"`
	Notes    int `json:"notes"`
	Bazar    int `json:"bazar"`
	Total    int `json:"total"`
}

type IDMapping struct {
	TempID string `json:"tempId"`
	RealID string `json:"realId"`
}

type IDMappings struct {
	Incomes  []IDMapping `json:"incomes"`
	Expenses []IDMapping `json:"expenses"`
	Notes    []IDMapping `json:"notes"`
	Bazar    []IDMapping `json:"bazar"`
}

func NewIDMappings() *IDMappings {
	return &IDMappings{
		Incomes:  []IDMapping{},
		Expenses: []IDMapping{},
		Notes:    []IDMapping{},
		Bazar:    []IDMapping{},
	}
}

// Set stores the mappings produced for kind k.
func (m *IDMappings) Set(k Kind, mappings []IDMapping) {
	if mappings == nil {
		mappings = []IDMapping{}
	}
	switch k {
	case KindIncome:
		m.Incomes = mappings
	case KindExpense:
		m.Expenses = mappings
	case KindNote:
		m.Notes = mappings
	case KindBazar:
		m.Bazar = mappings
	}
}

type ConflictType string

const (
	ConflictNotFound  ConflictType = "not_found"
	ConflictTimestamp ConflictType = "timestamp_conflict"
	ConflictError     ConflictType = "error"
)

type Resolution string

const ResolutionServerWins Resolution = "server_wins"

// Conflict explains why a pending change was not applied as submitted.
// It is informational: a sync that reports conflicts still succeeded.
type Conflict struct {
	Type            ConflictType `json:"type"`
	ModelName       Kind         `json:"modelName"`
	ID              string       `json:"id,omitempty"`
	ServerTimestamp *time.Time   `json:"serverTimestamp,omitempty"`
	ClientTimestamp *time.Time   `json:"clientTimestamp,omitempty"`
	Resolution      Resolution   `json:"resolution,omitempty"`
	Message         string       `json:"message"`
	Error           string       `json:"error,omitempty"`
}

// SyncResult is what one sync cycle hands back to the transport layer.
type SyncResult struct {
	SyncTimestamp time.Time
	Changes       *Changes
	IDMappings    *IDMappings
	Conflicts     []Conflict
}
