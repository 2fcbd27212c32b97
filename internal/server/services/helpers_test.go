package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, encoded string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.TokenValidityDuration = time.Hour
	return cfg
}

type fixture struct {
	rm       *repomanager.InMemoryRepositoryManager
	uploader *fakeUploader
	users    *UserService
	messages *MessageService
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	rm := repomanager.NewInMemoryRepositoryManager()
	up := &fakeUploader{url: "http://cdn/images/x.png"}
	return &fixture{
		rm:       rm,
		uploader: up,
		users:    NewUserService(nil, rm, up, cfg),
		messages: NewMessageService(nil, rm, up),
	}
}

func (f *fixture) signup(t *testing.T, name, email string) *Session {
	t.Helper()
	s, err := f.users.Signup(context.Background(), name, email, "secret123")
	require.NoError(t, err)
	return s
}

func requireMessage(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "want kind %v, got %v", kind, err)
	got, ok := common.MessageOf(err)
	require.True(t, ok, "error carries no message: %v", err)
	require.Equal(t, msg, got)
}
