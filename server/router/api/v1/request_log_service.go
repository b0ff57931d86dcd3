package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
	simerr "github.com/peswahq/ussd-simulator/server/internal/errors"
	"github.com/peswahq/ussd-simulator/store"
)

// defaultLogLimit caps an unbounded log listing.
const defaultLogLimit = 200

// RequestLogResponse is one audit row in API form.
type RequestLogResponse struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	SessionID string             `json:"sessionId"`
	Request   *ussd.RootRequest  `json:"request"`
	Response  *ussd.RootResponse `json:"response,omitempty"`
	Success   bool               `json:"success"`
	Error     string             `json:"error,omitempty"`
	Duration  int64              `json:"durationMs"`
}

// ListRequestLogs returns attempts, newest first. Supports `session_id` and
// `limit` query parameters plus a CEL `filter` expression over the fields
// session_id, success, error, duration_ms, msisdn, msg and network, e.g.
// `success == false && duration_ms > 100`.
func (s *APIV1Service) ListRequestLogs(c echo.Context) error {
	find := &store.FindRequestLog{}
	if sessionID := c.QueryParam("session_id"); sessionID != "" {
		find.SessionID = &sessionID
	}

	limit := defaultLogLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return toHTTPError(simerr.InvalidArgument("limit must be a positive integer"))
		}
		limit = parsed
	}
	find.Limit = &limit

	logs, err := s.Store.ListRequestLogs(c.Request().Context(), find)
	if err != nil {
		return toHTTPError(err)
	}

	if expr := c.QueryParam("filter"); expr != "" {
		logs, err = filterRequestLogs(logs, expr)
		if err != nil {
			return toHTTPError(simerr.InvalidArgument("invalid filter: " + err.Error()))
		}
	}

	list := make([]*RequestLogResponse, 0, len(logs))
	for _, entry := range logs {
		list = append(list, toRequestLogResponse(entry))
	}
	return c.JSON(http.StatusOK, list)
}

// DeleteRequestLogs clears the audit trail, optionally for one session.
func (s *APIV1Service) DeleteRequestLogs(c echo.Context) error {
	delete := &store.DeleteRequestLog{}
	if sessionID := c.QueryParam("session_id"); sessionID != "" {
		delete.SessionID = &sessionID
	}
	if err := s.Store.DeleteRequestLogs(c.Request().Context(), delete); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toRequestLogResponse(entry *store.RequestLog) *RequestLogResponse {
	return &RequestLogResponse{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		SessionID: entry.SessionID,
		Request:   entry.Request,
		Response:  entry.Response,
		Success:   entry.Success,
		Error:     entry.Error,
		Duration:  entry.Duration,
	}
}
