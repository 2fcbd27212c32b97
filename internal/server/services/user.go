// Package services contains server-side business logic. This file implements
// UserService: signup, login, logout, session checks and profile updates.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/media"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	errFieldsRequired     = common.Validation("All fields are required")
	errPasswordTooShort   = common.Validation(fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
	errPasswordTooLong    = common.Validation(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	errEmailExists        = common.NewError(common.ErrorAlreadyExists, "Email already exists")
	errInvalidCredentials = common.NewError(common.ErrorInvalidCredentials, "Invalid credentials")
	errInvalidSession     = common.NewError(common.ErrInvalidToken, "Unauthorized - Invalid Token")
	errSessionUserMissing = common.NewError(common.ErrorUnauthorized, "User not found")
	errProfilePicRequired = common.Validation("Profile pic is required")
)

// Session is a signed-in user together with the token that proves it.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// UserService provides account operations.
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	uploader       media.Uploader
	jwtSecret      []byte
	tokenValidity  time.Duration
	revokeOnLogout bool
}

// NewUserService constructs a UserService. db may be nil with the in-memory manager.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, uploader media.Uploader, cfg *config.Config) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		uploader:       uploader,
		jwtSecret:      []byte(cfg.SecretKey),
		tokenValidity:  cfg.TokenValidityDuration,
		revokeOnLogout: cfg.RevokeOnLogout,
	}
}

// TokenValidity is the lifetime of issued sessions.
func (s *UserService) TokenValidity() time.Duration {
	return s.tokenValidity
}

// Signup validates input, stores a new user and issues a session for it.
// The token is only minted once the user row exists.
func (s *UserService) Signup(ctx context.Context, fullName, email, password string) (*Session, error) {
	fullName = strings.TrimSpace(fullName)
	email = common.NormalizeEmail(email)
	if fullName == "" || email == "" || password == "" {
		return nil, errFieldsRequired
	}
	if utf8.RuneCountInString(password) < auth.MinPasswordLength {
		return nil, errPasswordTooShort
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, errPasswordTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	var user *models.User
	err = s.repomanager.RunInTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return errEmailExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, &models.User{FullName: fullName, Email: email, PasswordHash: hash})
		if errors.Is(err, common.ErrorAlreadyExists) {
			return errEmailExists
		}
		return err
	})
	if err != nil {
		if errors.Is(err, errEmailExists) {
			return nil, errEmailExists
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	return s.newSession(user)
}

// Login checks credentials. Unknown email and wrong password give the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}

	return s.newSession(user)
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil, errInvalidSession
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, nil, errInvalidSession
	}

	if s.revokeOnLogout && claims.ID != "" {
		revoked, err := s.repomanager.RevokedTokens(s.db).IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("authenticate: %w", err)
		}
		if revoked {
			return nil, nil, errInvalidSession
		}
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, errSessionUserMissing
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, claims, nil
}

// Logout revokes token when revocation is enabled. Otherwise, and for tokens
// that no longer parse, there is nothing to do on the server.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if !s.revokeOnLogout || token == "" {
		return nil
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.repomanager.RevokedTokens(s.db).Create(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// PurgeRevokedTokens drops revocations whose tokens have expired anyway.
func (s *UserService) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RevokedTokens(s.db).DeleteExpired(ctx, time.Now())
}

// UpdateProfilePic uploads the encoded image and stores its URL on the user.
func (s *UserService) UpdateProfilePic(ctx context.Context, userID, encoded string) (*models.User, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, errProfilePicRequired
	}

	url, err := s.uploader.Upload(ctx, encoded)
	if err != nil {
		if _, ok := common.MessageOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: upload: %w", err)
	}

	user, err := s.repomanager.Users(s.db).UpdateProfilePic(ctx, userID, url)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errSessionUserMissing
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ListOthers returns every user except userID.
func (s *UserService) ListOthers(ctx context.Context, userID string) ([]*models.User, error) {
	users, err := s.repomanager.Users(s.db).ListExcept(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) newSession(user *models.User) (*Session, error) {
	token, _, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: time.Now().Add(s.tokenValidity)}, nil
}
