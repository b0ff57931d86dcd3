// Package server assembles the HTTP surface of the simulator.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/peswahq/ussd-simulator/internal/profile"
	"github.com/peswahq/ussd-simulator/plugin/ussd"
	"github.com/peswahq/ussd-simulator/server/middleware"
	apiv1 "github.com/peswahq/ussd-simulator/server/router/api/v1"
	"github.com/peswahq/ussd-simulator/server/service/simulator"
	"github.com/peswahq/ussd-simulator/store"
)

// Server is the simulator HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	simulator  *simulator.Service
}

// NewServer creates the server with all routes registered.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))

	// 20 requests/second with burst 40 per client; plenty for a manual
	// test tool, tight enough to stop a runaway loop.
	rateLimiter := middleware.NewRateLimiter(50*time.Millisecond, 40)
	e.Use(rateLimiter.Middleware())

	client := ussd.NewClient(&ussd.ClientConfig{Timeout: p.CallTimeout})
	sim := simulator.NewService(p, st, client, slog.Default())

	apiService := apiv1.NewAPIV1Service(p, st, sim, slog.Default())
	apiService.Register(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	s := &Server{
		Profile:    p,
		Store:      st,
		echoServer: e,
		simulator:  sim,
	}
	return s, nil
}

// Start begins serving. It blocks until the listener fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", slog.String("address", address), slog.String("mode", s.Profile.Mode))

	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown gracefully stops the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}
	slog.Info("server stopped")
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echoServer
}
