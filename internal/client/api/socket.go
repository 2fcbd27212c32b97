package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/gorilla/websocket"
)

// Frame is one event pushed by the server.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handlers receive decoded events. Nil handlers are skipped.
type Handlers struct {
	OnMessage     func(models.Message)
	OnOnlineUsers func([]string)
}

// Listen opens the realtime socket with the current session and calls the
// handlers until ctx is done or the connection drops.
func (c *Client) Listen(ctx context.Context, h Handlers) error {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/socket"

	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Cookie", (&http.Cookie{Name: common.SessionCookieName, Value: token}).String())
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return fmt.Errorf("dial socket: %w", err)
	}
	defer ws.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.Close()
		case <-done:
		}
	}()

	for {
		var f Frame
		if err := ws.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch f.Event {
		case common.EventNewMessage:
			var m models.Message
			if err := json.Unmarshal(f.Data, &m); err == nil && h.OnMessage != nil {
				h.OnMessage(m)
			}
		case common.EventGetOnlineUsers:
			var ids []string
			if err := json.Unmarshal(f.Data, &ids); err == nil && h.OnOnlineUsers != nil {
				h.OnOnlineUsers(ids)
			}
		}
	}
}
