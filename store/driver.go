package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for the request-log store driver.
// It contains all methods a database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Migrate(ctx context.Context) error

	// RequestLog model related methods.
	CreateRequestLog(ctx context.Context, create *RequestLog) (*RequestLog, error)
	ListRequestLogs(ctx context.Context, find *FindRequestLog) ([]*RequestLog, error)
	DeleteRequestLogs(ctx context.Context, delete *DeleteRequestLog) error
}
