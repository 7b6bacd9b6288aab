package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/model"
)

func TestCreateWorkstationDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	seedWorkstation(t, database, "WSM007", nil)

	_, err := CreateWorkstation(context.Background(), database, "WSM007", "Again", nil)
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	assert.Equal(t, "workStationID", conflict.Field)
}

func TestNextWorkstationCode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	code, err := NextWorkstationCode(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, "WSM001", code)

	seedWorkstation(t, database, "WSM009", nil)
	seedWorkstation(t, database, "WSM1200", nil)

	code, err = NextWorkstationCode(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, "WSM1201", code)
}

func TestNextWorkstationCodeExhausted(t *testing.T) {
	database := db.NewTestDB(t)
	seedWorkstation(t, database, "WSM9223372036854775807", nil)

	_, err := NextWorkstationCode(context.Background(), database)
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	assert.Equal(t, "workStationID", conflict.Field)

	emp := seedEmployee(t, database, "anovak")
	_, _, err = EnsureDefaultWorkstation(context.Background(), database, emp.ID)
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
}

func TestEnsureDefaultWorkstation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	emp := seedEmployee(t, database, "anovak")

	first, created, err := EnsureDefaultWorkstation(ctx, database, emp.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "Ana Novak", first.Name)
	require.NotNil(t, first.EmployeeID)
	assert.Equal(t, emp.ID, *first.EmployeeID)

	second, created, err := EnsureDefaultWorkstation(ctx, database, emp.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := ListWorkstations(ctx, database, emp.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnsureDefaultWorkstationConcurrent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	emp := seedEmployee(t, database, "anovak")

	const callers = 8
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws, _, err := EnsureDefaultWorkstation(ctx, database, emp.ID)
			errs[i] = err
			if ws != nil {
				ids[i] = ws.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	list, err := ListWorkstations(ctx, database, emp.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnsureDefaultWorkstationUnknownEmployee(t *testing.T) {
	database := db.NewTestDB(t)

	_, _, err := EnsureDefaultWorkstation(context.Background(), database, 42)
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf), "expected not found, got %v", err)
	assert.Equal(t, "employee", nf.Entity)
}

func TestUpdateWorkstationTransferNeedsConfirmation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	ana := seedEmployee(t, database, "anovak")
	bor := seedEmployee(t, database, "bkranjc")
	seedWorkstation(t, database, "WSM001", &ana.ID)
	a := seedAsset(t, database, c, "LAP-001")
	require.NoError(t, AssignAssets(ctx, database, []int64{a.ID}, "WSM001", model.StatusOnsite))

	err := UpdateWorkstation(ctx, database, "WSM001", "Desk", &bor.ID, false)
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	require.Len(t, conflict.Conflicts, 1)

	ws, err := GetWorkstation(ctx, database, "WSM001")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, *ws.EmployeeID)

	require.NoError(t, UpdateWorkstation(ctx, database, "WSM001", "Desk", &bor.ID, true))

	ws, err = GetWorkstation(ctx, database, "WSM001")
	require.NoError(t, err)
	assert.Equal(t, bor.ID, *ws.EmployeeID)
	assert.Equal(t, 1, ws.AssetCount)

	// The asset follows the workstation.
	got, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "WSM001", *got.WorkstationID)
}

func TestUpdateWorkstationClearsDefaultOnTransfer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ana := seedEmployee(t, database, "anovak")
	bor := seedEmployee(t, database, "bkranjc")
	ws, _, err := EnsureDefaultWorkstation(ctx, database, ana.ID)
	require.NoError(t, err)

	require.NoError(t, UpdateWorkstation(ctx, database, ws.ID, ws.Name, &bor.ID, false))

	got, err := GetWorkstation(ctx, database, ws.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	// Ana gets a fresh default on the next request.
	fresh, created, err := EnsureDefaultWorkstation(ctx, database, ana.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, ws.ID, fresh.ID)
}

func TestDeleteWorkstationGuard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	seedWorkstation(t, database, "WSM001", nil)
	a := seedAsset(t, database, c, "LAP-001")
	require.NoError(t, AssignAssets(ctx, database, []int64{a.ID}, "WSM001", model.StatusOnsite))

	err := DeleteWorkstation(ctx, database, "WSM001")
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)

	_, err = UnassignAssets(ctx, database, []int64{a.ID})
	require.NoError(t, err)
	require.NoError(t, DeleteWorkstation(ctx, database, "WSM001"))

	ws, err := GetWorkstation(ctx, database, "WSM001")
	require.NoError(t, err)
	assert.Nil(t, ws)

	err = DeleteWorkstation(ctx, database, "WSM001")
	var nf *apperr.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
