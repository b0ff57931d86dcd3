package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldCallID is the field name for the call ID.
	LogFieldCallID = "call_id"
	// LogFieldSessionID is the field name for the local session ID.
	LogFieldSessionID = "session_id"
	// LogFieldNetwork is the field name for the network operator.
	LogFieldNetwork = "network"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
)

// CallContext carries structured logging state for a single simulator action.
type CallContext struct {
	CallID    string
	SessionID string
	Network   string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewCallContext creates a new call context with a generated call ID.
func NewCallContext(logger *slog.Logger, sessionID, network string) *CallContext {
	return &CallContext{
		CallID:    uuid.NewString(),
		SessionID: sessionID,
		Network:   network,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (c *CallContext) Info(msg string, attrs ...slog.Attr) {
	c.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, c.baseAttrsAppended(attrs...)...)
}

// Debug logs a debug message.
func (c *CallContext) Debug(msg string, attrs ...slog.Attr) {
	c.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, c.baseAttrsAppended(attrs...)...)
}

// Warn logs a warning message.
func (c *CallContext) Warn(msg string, attrs ...slog.Attr) {
	c.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, c.baseAttrsAppended(attrs...)...)
}

// Error logs an error message with the error text.
func (c *CallContext) Error(msg string, errText string, attrs ...slog.Attr) {
	allAttrs := append(attrs, slog.String("error", errText))
	c.Logger.LogAttrs(context.Background(), slog.LevelError, msg, c.baseAttrsAppended(allAttrs...)...)
}

// Duration returns the elapsed time since the action started.
func (c *CallContext) Duration() time.Duration {
	return time.Since(c.StartTime)
}

// DurationMs returns the elapsed time in milliseconds.
func (c *CallContext) DurationMs() int64 {
	return c.Duration().Milliseconds()
}

func (c *CallContext) baseAttrsAppended(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldCallID, c.CallID),
		slog.String(LogFieldSessionID, c.SessionID),
		slog.String(LogFieldNetwork, c.Network),
	}
	return append(base, attrs...)
}
