package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
)

const (
	keySessionToken = "session_token"
	keyUserID       = "user_id"
	keyFullName     = "full_name"
)

// MetadataRepository is a small key/value table.
type MetadataRepository struct {
	db dbx.DBTX
}

func NewMetadataRepository(db dbx.DBTX) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Get returns (nil, nil) when key is absent.
func (r *MetadataRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *MetadataRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *MetadataRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *MetadataRepository) SaveSession(ctx context.Context, s models.Session) error {
	for k, v := range map[string]string{
		keySessionToken: s.Token,
		keyUserID:       s.UserID,
		keyFullName:     s.FullName,
	} {
		if err := r.Set(ctx, k, []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// LoadSession returns nil when no session was saved.
func (r *MetadataRepository) LoadSession(ctx context.Context) (*models.Session, error) {
	token, err := r.Get(ctx, keySessionToken)
	if err != nil || token == nil {
		return nil, err
	}
	userID, err := r.Get(ctx, keyUserID)
	if err != nil {
		return nil, err
	}
	name, err := r.Get(ctx, keyFullName)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: string(token), UserID: string(userID), FullName: string(name)}, nil
}

func (r *MetadataRepository) ClearSession(ctx context.Context) error {
	for _, k := range []string{keySessionToken, keyUserID, keyFullName} {
		if err := r.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
