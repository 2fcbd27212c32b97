package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/api"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/store"
)

type App struct {
	config *config.Config
	api    *api.Client
	store  *store.Store
	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	session      *models.Session
	onlineMu     sync.Mutex
	online       map[string]bool
	stopListener context.CancelFunc
	listenerDone chan struct{}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	client, err := api.NewClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.StateDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing state database: %w", err)
	}

	return &App{
		config: c,
		api:    client,
		store:  st,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run restores the saved session, then reads commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	defer a.stopListening()

	a.println("Welcome to GophChat (type 'help' for commands)")
	a.restoreSession(ctx)

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader), a.println)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) status() string {
	if a.session == nil {
		return "(offline)"
	}
	return "(" + a.session.FullName + ")"
}

// println is safe to call from the socket listener goroutine.
func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// restoreSession reuses the token saved by a previous run if the server
// still accepts it.
func (a *App) restoreSession(ctx context.Context) {
	saved, err := a.store.Metadata.LoadSession(ctx)
	if err != nil {
		a.println("Could not read saved session:", err)
		return
	}
	if saved == nil {
		return
	}

	a.api.SetToken(saved.Token)
	me, err := a.api.Check(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			_ = a.store.Metadata.ClearSession(ctx)
			a.println("Saved session expired, please log in")
		} else {
			a.println("Server unavailable:", err)
		}
		return
	}

	a.startSession(ctx, me)
}

// startSession records the signed-in user and opens the realtime socket.
func (a *App) startSession(ctx context.Context, u *models.User) {
	a.session = &models.Session{Token: a.api.Token(), UserID: u.ID, FullName: u.FullName}
	if err := a.store.Metadata.SaveSession(ctx, *a.session); err != nil {
		a.println("Could not save session:", err)
	}
	a.printf("Signed in as %s <%s>\n", u.FullName, u.Email)
	a.startListening(ctx)
}

func (a *App) endSession(ctx context.Context) {
	a.stopListening()
	a.session = nil
	if err := a.store.Metadata.ClearSession(ctx); err != nil {
		a.println("Could not clear session:", err)
	}
}

func (a *App) startListening(ctx context.Context) {
	a.stopListening()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.stopListener = cancel
	a.listenerDone = done

	go func() {
		defer close(done)
		err := a.api.Listen(ctx, api.Handlers{
			OnMessage: func(m models.Message) {
				if err := a.store.Inbox.Add(ctx, m); err != nil {
					a.println("Could not store message:", err)
				}
				a.printf("\n[new message from %s] %s\n", m.SenderID, describe(m))
			},
			OnOnlineUsers: a.setOnline,
		})
		if err != nil && ctx.Err() == nil {
			a.println("Realtime connection closed:", err)
		}
	}()
}

func (a *App) setOnline(ids []string) {
	online := make(map[string]bool, len(ids))
	for _, id := range ids {
		online[id] = true
	}
	a.onlineMu.Lock()
	a.online = online
	a.onlineMu.Unlock()
}

func (a *App) isOnline(userID string) bool {
	a.onlineMu.Lock()
	defer a.onlineMu.Unlock()
	return a.online[userID]
}

func (a *App) stopListening() {
	if a.stopListener == nil {
		return
	}
	a.stopListener()
	<-a.listenerDone
	a.stopListener = nil
	a.listenerDone = nil
	a.setOnline(nil)
}

func describe(m models.Message) string {
	switch {
	case m.Text != "" && m.Image != "":
		return m.Text + " [image: " + m.Image + "]"
	case m.Image != "":
		return "[image: " + m.Image + "]"
	default:
		return m.Text
	}
}
