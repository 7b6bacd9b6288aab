// Package activity records the audit trail of every mutation.
package activity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

// Recorder appends activity records. Writes are best-effort: a failure is
// logged and never returned, so it cannot replace the outcome of the
// operation being recorded.
type Recorder struct {
	DB  store.Querier
	Log *zap.Logger
}

// New returns a Recorder writing to q.
func New(q store.Querier, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{DB: q, Log: log}
}

// Record appends one entry. Call it after the business change commits.
func (r *Recorder) Record(ctx context.Context, actor model.Actor, action, table string, recordID any, description string) {
	entry := &model.ActivityLog{
		Action:      action,
		TableName:   table,
		RecordID:    fmt.Sprint(recordID),
		PerformedBy: actor.Username,
		Description: description,
	}
	if entry.PerformedBy == "" {
		entry.PerformedBy = model.SystemActor.Username
	}

	// A cancelled request must not drop the record of a committed change.
	ctx = context.WithoutCancel(ctx)

	if err := store.InsertActivity(ctx, r.DB, entry); err != nil {
		r.Log.Warn("recording activity failed",
			zap.String("action", action),
			zap.String("table", table),
			zap.String("record_id", entry.RecordID),
			zap.String("performed_by", entry.PerformedBy),
			zap.Error(err),
		)
	}
}

// List returns activity records, newest first.
func (r *Recorder) List(ctx context.Context, f store.ActivityFilter) ([]model.ActivityLog, error) {
	logs, err := store.ListActivity(ctx, r.DB, f)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.ActivityLog{}
	}
	return logs, nil
}
