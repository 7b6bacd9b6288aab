package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/model"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestListAssetsWrapsDriverError(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	diskErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT (.+) FROM assets a").WillReturnError(diskErr)

	_, err = ListAssets(context.Background(), database, AssetFilter{Unassigned: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.Contains(t, err.Error(), "listing assets")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignAssetsReportsCommitFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	now := time.Now()
	ws := "WSM001"
	rows := sqlmock.NewRows([]string{
		"id", "name", "tag", "serial_number", "model_id", "category_id", "status",
		"image_path", "workstation_id", "is_borrowed", "borrow_employee_id",
		"borrow_start_date", "borrow_end_date", "created_at", "updated_at",
		"model_name", "category_name",
	}).AddRow(int64(7), "Laptop", "LAP-007", "", int64(1), int64(1), model.StatusOnsite,
		"", ws, false, nil, nil, nil, now, now, "Latitude", "Laptops")

	commitErr := errors.New("database is locked")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM assets a").WithArgs(int64(7)).WillReturnRows(rows)
	mock.ExpectExec("UPDATE assets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(commitErr)

	_, err = UnassignAssets(context.Background(), database, []int64{7})
	require.Error(t, err)
	assert.ErrorIs(t, err, commitErr)
	assert.Contains(t, err.Error(), "committing unassignment")
	assert.NoError(t, mock.ExpectationsWereMet())
}
