// Package users declares the user store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Repository persists user accounts.
//
// Lookups return common.ErrorNotFound when no row matches. Create returns
// common.ErrorAlreadyExists when the email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListExcept(ctx context.Context, id string) ([]*models.User, error)
	UpdateProfilePic(ctx context.Context, id string, url string) (*models.User, error)
}
