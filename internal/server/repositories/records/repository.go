package records

import (
	"context"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
)

// Repository is the user-scoped store for one record kind. Every method
// filters by owner; a record belonging to another user is indistinguishable
// from a missing one.
type Repository[T models.Record] interface {
	// SelectUpdated returns records with updated_at > since in ascending
	// updated_at order, soft-deleted ones included.
	SelectUpdated(ctx context.Context, userID string, since time.Time) ([]T, error)
	GetByID(ctx context.Context, userID, id string) (T, error)
	// GetByIDForUpdate is GetByID with a row lock; call it inside a transaction.
	GetByIDForUpdate(ctx context.Context, userID, id string) (T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
	// SoftDelete marks a live record deleted and reports whether one matched.
	SoftDelete(ctx context.Context, userID, id string, at time.Time) (bool, error)
	List(ctx context.Context, userID string) ([]T, error)
}
