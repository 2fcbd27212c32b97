// Package models holds the server's persisted records and the shapes that
// are allowed to leave the process.
package models

import "time"

// User is a stored account. It never goes to a client directly; use Public.
type User struct {
	ID           string    `json:"-"`
	FullName     string    `json:"-"`
	Email        string    `json:"-"`
	PasswordHash string    `json:"-"`
	ProfilePic   string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PublicUser is the client-facing projection of a User without the
// password hash.
type PublicUser struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// PublicUsers projects a slice; the result is never nil so it encodes as [].
func PublicUsers(users []*User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
