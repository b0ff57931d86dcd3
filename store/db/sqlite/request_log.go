package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
	"github.com/peswahq/ussd-simulator/store"
)

func (d *DB) CreateRequestLog(ctx context.Context, create *store.RequestLog) (*store.RequestLog, error) {
	if create.Timestamp.IsZero() {
		create.Timestamp = time.Now()
	}

	requestJSON, err := json.Marshal(create.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var responseJSON sql.NullString
	if create.Response != nil {
		raw, err := json.Marshal(create.Response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		responseJSON = sql.NullString{String: string(raw), Valid: true}
	}

	fields := []string{"id", "created_ts", "session_id", "request", "response", "success", "error", "duration_ms"}
	placeholderValues := []any{
		create.ID, create.Timestamp.UnixMilli(), create.SessionID,
		string(requestJSON), responseJSON, create.Success, create.Error, create.Duration,
	}

	stmt := `INSERT INTO request_log (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)`

	if _, err := d.db.ExecContext(ctx, stmt, placeholderValues...); err != nil {
		return nil, fmt.Errorf("failed to create request log: %w", err)
	}

	return create, nil
}

func (d *DB) ListRequestLogs(ctx context.Context, find *store.FindRequestLog) ([]*store.RequestLog, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.SessionID; v != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Success; v != nil {
		where, args = append(where, "success = "+placeholder(len(args)+1)), append(args, *v)
	}

	// Newest first: the logger surfaces the latest attempt on top.
	query := `
		SELECT id, created_ts, session_id, request, response, success, error, duration_ms
		FROM request_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	defer rows.Close()

	list := []*store.RequestLog{}
	for rows.Next() {
		var (
			entry        store.RequestLog
			createdTs    int64
			requestJSON  string
			responseJSON sql.NullString
		)
		if err := rows.Scan(
			&entry.ID, &createdTs, &entry.SessionID,
			&requestJSON, &responseJSON, &entry.Success, &entry.Error, &entry.Duration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request log: %w", err)
		}

		entry.Timestamp = time.UnixMilli(createdTs)

		var request ussd.RootRequest
		if err := json.Unmarshal([]byte(requestJSON), &request); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request: %w", err)
		}
		entry.Request = &request

		if responseJSON.Valid {
			var response ussd.RootResponse
			if err := json.Unmarshal([]byte(responseJSON.String), &response); err != nil {
				return nil, fmt.Errorf("failed to unmarshal response: %w", err)
			}
			entry.Response = &response
		}

		list = append(list, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) DeleteRequestLogs(ctx context.Context, delete *store.DeleteRequestLog) error {
	where, args := []string{"1 = 1"}, []any{}

	if v := delete.SessionID; v != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	stmt := `DELETE FROM request_log WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete request logs: %w", err)
	}
	return nil
}
