package models

import "time"

// User owns records. Accounts are created by the auth service; the sync
// server only checks that the token's user still exists.
type User struct {
	ID        string
	Phone     string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
