package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

func TestRecordAndList(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	r := New(database, zap.NewNop())

	actor := model.Actor{UserID: 1, Username: "admin"}
	r.Record(ctx, actor, model.ActionCreate, "assets", int64(10), "created asset LAP-100")
	r.Record(ctx, model.Actor{}, model.ActionDelete, "assets", int64(10), "deleted asset LAP-100")

	logs, err := r.List(ctx, store.ActivityFilter{TableName: "assets"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionDelete, logs[0].Action)
	assert.Equal(t, "system", logs[0].PerformedBy)
	assert.Equal(t, "admin", logs[1].PerformedBy)
	assert.Equal(t, "10", logs[1].RecordID)

	empty, err := r.List(ctx, store.ActivityFilter{TableName: "companies"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRecordFailureIsLoggedNotReturned(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectExec("INSERT INTO activity_logs").WillReturnError(errors.New("disk full"))

	core, logs := observer.New(zapcore.WarnLevel)
	r := New(database, zap.New(core))

	r.Record(context.Background(), model.Actor{Username: "admin"}, model.ActionUpdate, "assets", 7, "edited")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "recording activity failed", entry.Message)
	assert.Equal(t, "assets", entry.ContextMap()["table"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
