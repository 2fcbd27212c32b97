// Package messages declares the message store contract and its PostgreSQL
// implementation.
package messages

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Repository persists direct messages.
type Repository interface {
	// Create stores msg and fills its id and timestamps. It returns
	// common.ErrorNotFound when sender or receiver does not exist.
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)

	// ListConversation returns every message exchanged between a and b in
	// either direction, oldest first.
	ListConversation(ctx context.Context, a, b string) ([]*models.Message, error)
}
