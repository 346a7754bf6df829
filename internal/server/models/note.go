package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type Note struct {
	Meta
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	NotificationDate *time.Time `json:"notificationDate,omitempty"`
	IsNotified       bool       `json:"isNotified"`
}

func (r *Note) Normalize(time.Time) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	if r.Title == "" {
		return emptyField("title")
	}
	if r.Description == "" {
		return emptyField("description")
	}
	return nil
}

type NotePatch struct {
	Title            *string      `json:"title"`
	Description      *string      `json:"description"`
	NotificationDate OptionalTime `json:"notificationDate"`
	IsNotified       *bool        `json:"isNotified"`
}

func (p NotePatch) Required() error {
	var missing []string
	if p.Title == nil {
		missing = append(missing, "title")
	}
	if p.Description == nil {
		missing = append(missing, "description")
	}
	return missingFields(missing...)
}

// ApplyTo re-arms the reminder when the notification date moves and disarms
// it when the date is cleared, unless the client states the notified flag
// itself.
func (p NotePatch) ApplyTo(r *Note) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.NotificationDate.Set {
		r.NotificationDate = p.NotificationDate.Value
		r.IsNotified = false
	}
	if p.IsNotified != nil {
		r.IsNotified = *p.IsNotified
	}
}

// OptionalTime tells an absent key apart from an explicit null. Set is true
// whenever the key was present; Value is nil for null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}
