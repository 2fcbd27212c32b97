// Package httpapi exposes the chat services over HTTP JSON and hands
// websocket upgrades to the realtime hub.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/realtime"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address       string
	logger        logging.Logger
	users         *services.UserService
	messages      *services.MessageService
	hub           *realtime.Hub
	corsOrigins   []string
	secureCookies bool
	maxBodyBytes  int64
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ms *services.MessageService, hub *realtime.Hub) *Server {
	return &Server{
		address:       cfg.EndpointAddrHTTP,
		logger:        l.With("module", "http_server"),
		users:         us,
		messages:      ms,
		hub:           hub,
		corsOrigins:   cfg.CORSOrigins,
		secureCookies: !cfg.IsDevelopment(),
		// base64 inflates by 4/3; leave room for the rest of the JSON
		maxBodyBytes: cfg.MaxImageBytes*4/3 + 64<<10,
	}
}

// Run serves until ctx is cancelled, then closes live sockets and shuts the
// HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
