package models

import "time"

// RevokedToken marks a session token id as unusable until ExpiresAt.
type RevokedToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
