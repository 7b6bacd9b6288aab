package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/model"
)

func TestCreateAssetStartsUnassigned(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	a := seedAsset(t, database, c, "LAP-001")
	assert.Nil(t, a.WorkstationID)
	assert.Equal(t, c.laptops.ID, a.CategoryID)
	assert.Equal(t, "Latitude 7440", a.ModelName)
	assert.Equal(t, "Laptops", a.CategoryName)

	got, err := GetAssetByTag(ctx, database, "lap-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
}

func TestCreateAssetDuplicateTag(t *testing.T) {
	database := db.NewTestDB(t)
	c := seedCatalog(t, database)
	seedAsset(t, database, c, "LAP-001")

	_, err := CreateAsset(context.Background(), database, &model.Asset{
		Tag: "lap-001", ModelID: c.laptop.ID, CategoryID: c.laptops.ID, Status: model.StatusReadyToDeploy,
	})
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	assert.Equal(t, "assetTag", conflict.Field)
}

func TestAssignAssets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	a1 := seedAsset(t, database, c, "LAP-001")
	a2 := seedAsset(t, database, c, "LAP-002")
	seedWorkstation(t, database, "WSM001", nil)

	require.NoError(t, AssignAssets(ctx, database, []int64{a1.ID, a2.ID}, "WSM001", model.StatusOnsite))

	for _, id := range []int64{a1.ID, a2.ID} {
		got, err := GetAsset(ctx, database, id)
		require.NoError(t, err)
		require.NotNil(t, got.WorkstationID)
		assert.Equal(t, "WSM001", *got.WorkstationID)
		assert.Equal(t, model.StatusOnsite, got.Status)
	}

	unassigned, err := ListAssets(ctx, database, AssetFilter{Unassigned: true})
	require.NoError(t, err)
	assert.Empty(t, unassigned)

	onDesk, err := ListAssets(ctx, database, AssetFilter{WorkstationID: "WSM001"})
	require.NoError(t, err)
	assert.Len(t, onDesk, 2)
}

func TestAssignAssetsRejectsWholeBatch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	a10 := seedAsset(t, database, c, "LAP-010")
	a11 := seedAsset(t, database, c, "LAP-011")
	seedWorkstation(t, database, "WSM001", nil)
	seedWorkstation(t, database, "WSM002", nil)

	require.NoError(t, AssignAssets(ctx, database, []int64{a11.ID}, "WSM001", model.StatusOnsite))

	err := AssignAssets(ctx, database, []int64{a10.ID, a11.ID}, "WSM002", model.StatusWFH)
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, "Laptop LAP-011", conflict.Conflicts[0].Name)

	// Neither asset moved.
	got10, err := GetAsset(ctx, database, a10.ID)
	require.NoError(t, err)
	assert.Nil(t, got10.WorkstationID)
	assert.Equal(t, model.StatusReadyToDeploy, got10.Status)

	got11, err := GetAsset(ctx, database, a11.ID)
	require.NoError(t, err)
	assert.Equal(t, "WSM001", *got11.WorkstationID)
	assert.Equal(t, model.StatusOnsite, got11.Status)
}

func TestAssignAssetsMissingReferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)
	a := seedAsset(t, database, c, "LAP-001")

	var nf *apperr.NotFoundError

	err := AssignAssets(ctx, database, []int64{a.ID}, "WSM404", model.StatusOnsite)
	require.True(t, errors.As(err, &nf), "expected not found, got %v", err)
	assert.Equal(t, "workstation", nf.Entity)

	seedWorkstation(t, database, "WSM001", nil)
	err = AssignAssets(ctx, database, []int64{a.ID, 999}, "WSM001", model.StatusOnsite)
	require.True(t, errors.As(err, &nf), "expected not found, got %v", err)
	assert.Equal(t, "999", nf.ID)

	got, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WorkstationID)
}

func TestUnassignAssetsIsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	a := seedAsset(t, database, c, "LAP-001")
	seedWorkstation(t, database, "WSM001", nil)
	require.NoError(t, AssignAssets(ctx, database, []int64{a.ID}, "WSM001", model.StatusWFH))

	n, err := UnassignAssets(ctx, database, []int64{a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WorkstationID)
	assert.Equal(t, model.StatusReadyToDeploy, got.Status)

	n, err = UnassignAssets(ctx, database, []int64{a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestUnassignKeepsDefectiveStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	a := seedAsset(t, database, c, "LAP-001")
	seedWorkstation(t, database, "WSM001", nil)
	require.NoError(t, AssignAssets(ctx, database, []int64{a.ID}, "WSM001", model.StatusOnsite))

	a, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	a.Status = model.StatusDefective
	require.NoError(t, UpdateAsset(ctx, database, a))

	_, err = UnassignAssets(ctx, database, []int64{a.ID})
	require.NoError(t, err)

	got, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDefective, got.Status)
}

func TestUpdateAssetLeavesWorkstation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	a := seedAsset(t, database, c, "LAP-001")
	seedWorkstation(t, database, "WSM001", nil)
	require.NoError(t, AssignAssets(ctx, database, []int64{a.ID}, "WSM001", model.StatusOnsite))

	a.Name = "Renamed"
	a.WorkstationID = nil
	require.NoError(t, UpdateAsset(ctx, database, a))

	got, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	require.NotNil(t, got.WorkstationID)
	assert.Equal(t, "WSM001", *got.WorkstationID)
}

func TestDeleteAssetsAllOrNothing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	free := seedAsset(t, database, c, "LAP-001")
	bound := seedAsset(t, database, c, "LAP-002")
	seedWorkstation(t, database, "WSM001", nil)
	require.NoError(t, AssignAssets(ctx, database, []int64{bound.ID}, "WSM001", model.StatusOnsite))

	_, err := DeleteAssets(ctx, database, []int64{free.ID, bound.ID})
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)

	got, err := GetAsset(ctx, database, free.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "free asset must survive a rejected batch")

	deleted, err := DeleteAssets(ctx, database, []int64{free.ID})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "LAP-001", deleted[0].Tag)

	got, err = GetAsset(ctx, database, free.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAssetsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	c := seedCatalog(t, database)

	seedAsset(t, database, c, "LAP-002")
	seedAsset(t, database, c, "LAP-001")

	all, err := ListAssets(ctx, database, AssetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "LAP-001", all[0].Tag)

	byStatus, err := ListAssets(ctx, database, AssetFilter{Status: model.StatusDefective})
	require.NoError(t, err)
	assert.Empty(t, byStatus)

	byCategory, err := ListAssets(ctx, database, AssetFilter{CategoryID: c.monitors.ID})
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	byModel, err := ListAssets(ctx, database, AssetFilter{ModelID: c.laptop.ID})
	require.NoError(t, err)
	assert.Len(t, byModel, 2)
}
