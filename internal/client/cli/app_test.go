package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/api"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	sc "github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/httpapi"
	"github.com/dmitrijs2005/gophchat/internal/server/realtime"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploader struct{}

func (stubUploader) Upload(ctx context.Context, encoded string) (string, error) {
	return "http://cdn/images/pic.png", nil
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "cli-test"
	cfg.Environment = sc.EnvDevelopment

	log := logging.Discard()
	rm := repomanager.NewInMemoryRepositoryManager()
	hub := realtime.NewHub(log, nil)
	s := httpapi.NewServer(cfg, log,
		services.NewUserService(nil, rm, stubUploader{}, cfg),
		services.NewMessageService(nil, rm, stubUploader{}),
		hub)

	srv := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv
}

// stubPrompts answers text prompts from a queue and returns a fixed password.
func stubPrompts(t *testing.T, answers []string, password string) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText, getPassword = origText, origPw
	})

	getSimpleText = func(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
		require.NotEmpty(t, answers, "unexpected prompt %q", prompt)
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(w io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

func newTestApp(t *testing.T, serverURL, stateDB string) *App {
	t.Helper()
	a, err := NewApp(context.Background(), &config.Config{
		ServerURL:      serverURL,
		StateDB:        stateDB,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	a.out = &bytes.Buffer{}
	a.reader = bufio.NewReader(strings.NewReader(""))
	return a
}

func closeApp(a *App) {
	a.stopListening()
	_ = a.store.Close()
}

func (a *App) output() string {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return a.out.(*bytes.Buffer).String()
}

func waitOnline(t *testing.T, a *App, userID string) {
	t.Helper()
	require.Eventually(t, func() bool { return a.isOnline(userID) }, 3*time.Second, 10*time.Millisecond)
}

func TestNewApp_BadServerURL(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{ServerURL: "ftp://x", StateDB: ":memory:"})
	assert.Error(t, err)
}

func TestApp_CommandsRequireSession(t *testing.T) {
	srv := newBackend(t)
	a := newTestApp(t, srv.URL, ":memory:")
	defer closeApp(a)
	ctx := context.Background()

	assert.ErrorIs(t, a.Users(ctx), errNotLoggedIn)
	assert.ErrorIs(t, a.WhoAmI(ctx), errNotLoggedIn)
	assert.ErrorIs(t, a.Logout(ctx), errNotLoggedIn)
	assert.ErrorIs(t, a.Send(ctx, []string{"u", "hi"}), errNotLoggedIn)
	assert.ErrorIs(t, a.History(ctx, []string{"u"}), errNotLoggedIn)
}

func TestApp_ChatFlow(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	a := newTestApp(t, srv.URL, ":memory:")
	defer closeApp(a)

	stubPrompts(t, []string{"Ann", "ann@x.com"}, "secret1")
	require.NoError(t, a.Signup(ctx))
	require.NotNil(t, a.session)
	assert.Equal(t, "Ann", a.session.FullName)
	waitOnline(t, a, a.session.UserID)

	saved, err := a.store.Metadata.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, a.session.UserID, saved.UserID)

	bob, err := api.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	bobUser, err := bob.Signup(ctx, "Bob", "bob@x.com", "secret2")
	require.NoError(t, err)
	waitOnline(t, a, bobUser.ID)

	_, err = bob.Send(ctx, a.session.UserID, "hi ann", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs, err := a.store.Inbox.Recent(ctx, 10)
		return err == nil && len(msgs) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Contains(t, a.output(), "[new message from "+bobUser.ID+"] hi ann")

	require.NoError(t, a.Users(ctx))
	assert.Contains(t, a.output(), "* "+bobUser.ID)

	require.NoError(t, a.Send(ctx, []string{bobUser.ID, "hello", "bob"}))
	require.NoError(t, a.History(ctx, []string{bobUser.ID}))
	out := a.output()
	assert.Contains(t, out, "them: hi ann")
	assert.Contains(t, out, "me: hello bob")

	require.NoError(t, a.Inbox(ctx, []string{"5"}))
	assert.Error(t, a.Inbox(ctx, []string{"zero"}))

	assert.Error(t, a.History(ctx, nil))
	assert.Error(t, a.Send(ctx, []string{bobUser.ID}))

	require.NoError(t, a.Logout(ctx))
	assert.Nil(t, a.session)
	saved, err = a.store.Metadata.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestApp_LoginWrongPassword(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	other, err := api.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	_, err = other.Signup(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	a := newTestApp(t, srv.URL, ":memory:")
	defer closeApp(a)

	stubPrompts(t, []string{"ann@x.com"}, "wrong-pass")
	err = a.Login(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Nil(t, a.session)
}

func TestApp_RestoresSavedSession(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()
	stateDB := filepath.Join(t.TempDir(), "state.db")

	first := newTestApp(t, srv.URL, stateDB)
	stubPrompts(t, []string{"Ann", "ann@x.com"}, "secret1")
	require.NoError(t, first.Signup(ctx))
	userID := first.session.UserID
	closeApp(first)

	second := newTestApp(t, srv.URL, stateDB)
	defer closeApp(second)
	second.restoreSession(ctx)

	require.NotNil(t, second.session)
	assert.Equal(t, userID, second.session.UserID)
	assert.Contains(t, second.output(), "Signed in as Ann")
}

func TestApp_DropsRejectedSession(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	a := newTestApp(t, srv.URL, ":memory:")
	defer closeApp(a)
	require.NoError(t, a.store.Metadata.SaveSession(ctx, models.Session{Token: "garbage", UserID: "u1", FullName: "Ghost"}))

	a.restoreSession(ctx)

	assert.Nil(t, a.session)
	saved, err := a.store.Metadata.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Contains(t, a.output(), "Saved session expired")
}
