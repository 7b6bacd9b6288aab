package store

import (
	"context"
	"fmt"

	"github.com/erazemk/assetdesk/internal/model"
)

// ActivityFilter narrows ListActivity. Zero values disable a filter.
type ActivityFilter struct {
	TableName string
	Action    string
	RecordID  string
	Limit     int
}

// InsertActivity appends one activity record.
func InsertActivity(ctx context.Context, q Querier, l *model.ActivityLog) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO activity_logs (action, table_name, record_id, performed_by, description)
		 VALUES (?, ?, ?, ?, ?)`,
		l.Action, l.TableName, l.RecordID, l.PerformedBy, l.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting activity log: %w", err)
	}
	return nil
}

// ListActivity returns activity records, newest first.
func ListActivity(ctx context.Context, q Querier, f ActivityFilter) ([]model.ActivityLog, error) {
	query := `SELECT id, action, table_name, record_id, performed_by, description, created_at
	          FROM activity_logs WHERE 1=1`
	var args []any

	if f.TableName != "" {
		query += ` AND table_name = ?`
		args = append(args, f.TableName)
	}
	if f.Action != "" {
		query += ` AND action = ?`
		args = append(args, f.Action)
	}
	if f.RecordID != "" {
		query += ` AND record_id = ?`
		args = append(args, f.RecordID)
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activity logs: %w", err)
	}
	defer rows.Close()

	var out []model.ActivityLog
	for rows.Next() {
		var l model.ActivityLog
		if err := rows.Scan(&l.ID, &l.Action, &l.TableName, &l.RecordID, &l.PerformedBy, &l.Description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
