// Package server wires the pages and the login flow into the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/moodlist/internal/auth"
	"github.com/brizzai/moodlist/internal/auth/constants"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/cookie"
	"github.com/brizzai/moodlist/internal/logger"
	"github.com/brizzai/moodlist/internal/playlist"
	"github.com/brizzai/moodlist/internal/server/handler"
	"github.com/brizzai/moodlist/internal/server/views"
	"github.com/brizzai/moodlist/internal/spotify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server is the moodlist web server.
type Server struct {
	config  *config.ServerConfig
	auth    *auth.Service
	handler *handler.Handler
	http    *http.Server
}

// NewServer creates a new server instance.
func NewServer(cfg *config.ServerConfig, authService *auth.Service, h *handler.Handler) *Server {
	s := &Server{
		config:  cfg,
		auth:    authService,
		handler: h,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the full middleware stack around the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.auth.RegisterRoutes(mux)
	requireUser := s.auth.RequireUser()

	mux.HandleFunc(constants.HomePath, s.handler.Home)
	mux.HandleFunc("/playlist", s.handler.Playlists)
	mux.Handle("/playlist/create", requireUser(http.HandlerFunc(s.handler.CreatePlaylist)))
	mux.Handle("/playlist/new", requireUser(http.HandlerFunc(s.handler.NewPlaylist)))
	mux.HandleFunc(constants.FailedPath, s.handler.LoginFailed)
	mux.HandleFunc("/healthz", s.handler.Healthz)

	return LoggingMiddleware(RecoverMiddleware(s.auth.LoadSession()(mux)))
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	logger.Info("Server listening", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

func newPageHandler(api *spotify.Client, builder *playlist.Builder, codec *cookie.Codec, renderer *views.Renderer) *handler.Handler {
	return handler.NewHandler(api, builder, codec, renderer)
}

func registerHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

// Module provides the web server and starts it with the application
var Module = fx.Module("server",
	views.Module,
	fx.Provide(
		newPageHandler,
		NewServer,
	),
	fx.Invoke(registerHooks),
)
