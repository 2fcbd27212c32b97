package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_SharesOneStore(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	ctx := context.Background()

	require.NoError(t, m.RunMigrations(ctx, nil))

	u, err := m.Users(nil).Create(ctx, &models.User{FullName: "Ann", Email: "a@x.com"})
	require.NoError(t, err)

	got, err := m.Users(nil).GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FullName)

	_, err = m.Messages(nil).Create(ctx, &models.Message{SenderID: u.ID, ReceiverID: u.ID, Text: "note to self"})
	assert.NoError(t, err)
}

func TestInMemory_RunInTxPassesError(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	called := false
	err := m.RunInTx(context.Background(), nil, func(ctx context.Context, tx dbx.DBTX) error {
		called = true
		return errors.New("x")
	})
	assert.True(t, called)
	assert.EqualError(t, err, "x")
}
