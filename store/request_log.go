package store

import (
	"context"
	"time"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
)

// RequestLog is one attempted endpoint call, success or failure. It exists
// for display and audit only; the controller never reads it back to make
// decisions.
type RequestLog struct {
	ID        string
	Timestamp time.Time
	SessionID string
	Request   *ussd.RootRequest
	// Response is nil when the attempt failed.
	Response *ussd.RootResponse
	Success  bool
	Error    string
	// Duration is the measured call time in milliseconds.
	Duration int64
}

// FindRequestLog is the find condition for request logs.
type FindRequestLog struct {
	SessionID *string
	Success   *bool

	// Pagination
	Limit *int
}

// DeleteRequestLog is the delete request for request logs. Zero value
// clears the whole log.
type DeleteRequestLog struct {
	SessionID *string
}

// CreateRequestLog records one attempt.
func (s *Store) CreateRequestLog(ctx context.Context, create *RequestLog) (*RequestLog, error) {
	return s.driver.CreateRequestLog(ctx, create)
}

// ListRequestLogs lists attempts, newest first.
func (s *Store) ListRequestLogs(ctx context.Context, find *FindRequestLog) ([]*RequestLog, error) {
	return s.driver.ListRequestLogs(ctx, find)
}

// DeleteRequestLogs clears attempts matching the condition.
func (s *Store) DeleteRequestLogs(ctx context.Context, delete *DeleteRequestLog) error {
	return s.driver.DeleteRequestLogs(ctx, delete)
}
