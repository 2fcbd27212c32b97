// Package memory keeps users, messages and revoked tokens in process memory.
// It backs the "-d memory" mode and most service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/google/uuid"
)

// Store is safe for concurrent use. All three repositories share one lock so
// that cross-table checks (message receiver exists) see a consistent view.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	byEmail  map[string]string
	messages []*models.Message
	revoked  map[string]models.RevokedToken
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		revoked: make(map[string]models.RevokedToken),
		now:     time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Messages returns the message repository view of the store.
func (s *Store) Messages() *MessageRepository { return &MessageRepository{s: s} }

// RevokedTokens returns the revoked token repository view of the store.
func (s *Store) RevokedTokens() *RevokedTokenRepository { return &RevokedTokenRepository{s: s} }

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyMessage(m *models.Message) *models.Message {
	c := *m
	return &c
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byEmail[user.Email]; taken {
		return nil, common.ErrorAlreadyExists
	}

	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.s.users[user.ID] = copyUser(user)
	r.s.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) ListExcept(ctx context.Context, id string) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*models.User
	for _, u := range r.s.users {
		if u.ID != id {
			result = append(result, copyUser(u))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName != result[j].FullName {
			return result[i].FullName < result[j].FullName
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *UserRepository) UpdateProfilePic(ctx context.Context, id string, url string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.ProfilePic = url
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[msg.SenderID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.users[msg.ReceiverID]; !ok {
		return nil, common.ErrorNotFound
	}

	now := r.s.now()
	msg.ID = uuid.NewString()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	r.s.messages = append(r.s.messages, copyMessage(msg))
	return msg, nil
}

func (r *MessageRepository) ListConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Message, 0)
	for _, m := range r.s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			result = append(result, copyMessage(m))
		}
	}
	// messages are appended in creation order; stable keeps equal timestamps in that order
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type RevokedTokenRepository struct{ s *Store }

func (r *RevokedTokenRepository) Create(ctx context.Context, tokenID string, userID string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.revoked[tokenID]; ok {
		return nil
	}
	r.s.revoked[tokenID] = models.RevokedToken{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: r.s.now(),
	}
	return nil
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.revoked[tokenID]
	return ok && t.ExpiresAt.After(r.s.now()), nil
}

func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.revoked {
		if !t.ExpiresAt.After(now) {
			delete(r.s.revoked, id)
			n++
		}
	}
	return n, nil
}
