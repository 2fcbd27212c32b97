// Package revokedtokens declares the store of session token ids that were
// invalidated by logout before their natural expiry.
package revokedtokens

import (
	"context"
	"time"
)

// Repository records and checks revoked token ids.
type Repository interface {
	// Create marks tokenID as revoked until expiresAt. Revoking the same id
	// twice is not an error.
	Create(ctx context.Context, tokenID string, userID string, expiresAt time.Time) error

	// IsRevoked reports whether tokenID is revoked and not yet expired.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpired drops entries whose expiry is before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
