package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
	simerr "github.com/peswahq/ussd-simulator/server/internal/errors"
	"github.com/peswahq/ussd-simulator/store"
)

// SessionResponse is a session plus the normalized display of its latest
// reply, so a caller switching sessions can restore the screen directly.
type SessionResponse struct {
	*store.Session
	LastDisplay *ussd.Display `json:"lastDisplay,omitempty"`
}

// ListSessions returns all sessions, most recently active first.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	sessions := s.Store.ListSessions()
	list := make([]*SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		list = append(list, toSessionResponse(session))
	}
	return c.JSON(http.StatusOK, list)
}

// CreateSession explicitly starts a fresh session from the current
// configuration.
func (s *APIV1Service) CreateSession(c echo.Context) error {
	session, err := s.Simulator.NewSession()
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// GetSession returns one session with its full conversation history.
func (s *APIV1Service) GetSession(c echo.Context) error {
	session := s.Store.GetSession(c.Param("id"))
	if session == nil {
		return toHTTPError(simerr.NotFound(c.Param("id")))
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// DeleteSession removes the session entirely.
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	s.Simulator.DeleteSession(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// ResetSession clears the session's conversation history, keeping its
// identity fields.
func (s *APIV1Service) ResetSession(c echo.Context) error {
	session, err := s.Simulator.Reset(c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	if session == nil {
		return toHTTPError(simerr.NotFound(c.Param("id")))
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// toSessionResponse attaches the display form of the last successful reply,
// if any.
func toSessionResponse(session *store.Session) *SessionResponse {
	resp := &SessionResponse{Session: session}
	if history := session.ConversationHistory; len(history) > 0 {
		if last := history[len(history)-1]; last.Response != nil {
			display := ussd.Render(&last.Response.USSDResp)
			resp.LastDisplay = &display
		}
	}
	return resp
}
