// Package v1 exposes the simulator's JSON API: runtime configuration,
// session management, the send/reset cycle, and the request-log audit trail.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peswahq/ussd-simulator/internal/profile"
	simerr "github.com/peswahq/ussd-simulator/server/internal/errors"
	"github.com/peswahq/ussd-simulator/server/service/simulator"
	"github.com/peswahq/ussd-simulator/store"
)

// APIV1Service wires the controller and store into echo handlers.
type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Simulator *simulator.Service

	logger *slog.Logger
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, sim *simulator.Service, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIV1Service{
		Profile:   profile,
		Store:     store,
		Simulator: sim,
		logger:    logger,
	}
}

// Register mounts all v1 routes on the given echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	apiV1 := e.Group("/api/v1")

	apiV1.GET("/config", s.GetConfig)
	apiV1.PATCH("/config", s.UpdateConfig)

	apiV1.GET("/sessions", s.ListSessions)
	apiV1.POST("/sessions", s.CreateSession)
	apiV1.GET("/sessions/:id", s.GetSession)
	apiV1.DELETE("/sessions/:id", s.DeleteSession)
	apiV1.POST("/sessions/:id/reset", s.ResetSession)

	apiV1.POST("/simulator/send", s.Send)
	apiV1.POST("/simulator/reset", s.Reset)

	apiV1.GET("/logs", s.ListRequestLogs)
	apiV1.DELETE("/logs", s.DeleteRequestLogs)
	apiV1.GET("/logs/feed.rss", s.RequestLogFeed)
}

// toHTTPError maps a controller error onto an echo HTTP error.
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}
	switch simerr.GetCodeFromError(err) {
	case simerr.ErrCodeValidationFailed, simerr.ErrCodeInvalidArgument:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case simerr.ErrCodeNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case simerr.ErrCodeSessionBusy:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
