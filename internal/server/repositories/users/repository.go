package users

import (
	"context"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
