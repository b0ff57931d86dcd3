package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SendRequest is one user action: a dial, a menu selection, or a free-text
// reply. SessionID may be empty for the very first dial.
type SendRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

// Send drives one request/response cycle against the configured endpoint.
// Transport failures are a recorded outcome, not an HTTP error: the reply is
// 200 with success=false so the caller can render the failure in place.
func (s *APIV1Service) Send(c echo.Context) error {
	request := &SendRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	result, err := s.Simulator.Send(c.Request().Context(), request.SessionID, request.Input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ResetRequest names the session to reset. An empty session id only clears
// the caller's screen, which needs nothing from the server.
type ResetRequest struct {
	SessionID string `json:"sessionId"`
}

// Reset clears the named session's conversation history.
func (s *APIV1Service) Reset(c echo.Context) error {
	request := &ResetRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	session, err := s.Simulator.Reset(request.SessionID)
	if err != nil {
		return toHTTPError(err)
	}
	if session == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}
