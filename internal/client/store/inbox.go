package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
)

// InboxRepository stores messages received in real time.
type InboxRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewInboxRepository(db dbx.DBTX) *InboxRepository {
	return &InboxRepository{db: db, now: time.Now}
}

// Add stores m. A message that is already there is ignored.
func (r *InboxRepository) Add(ctx context.Context, m models.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inbox (id, sender_id, receiver_id, text, image, created_at, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, m.ID, m.SenderID, m.ReceiverID, m.Text, m.Image,
		m.CreatedAt.UTC().Format(time.RFC3339Nano), r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to add inbox message %s: %w", m.ID, err)
	}
	return nil
}

// Recent returns up to limit messages, oldest first.
func (r *InboxRepository) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, text, image, created_at FROM (
			SELECT * FROM inbox ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at ASC, id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	defer rows.Close()

	result := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		var created string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &created); err != nil {
			return nil, fmt.Errorf("failed to scan inbox row: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("bad inbox timestamp %q: %w", created, err)
		}
		m.UpdatedAt = m.CreatedAt
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inbox rows: %w", err)
	}
	return result, nil
}

func (r *InboxRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM inbox`); err != nil {
		return fmt.Errorf("failed to clear inbox: %w", err)
	}
	return nil
}
