package inventory

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

func strPtr(s string) *string { return &s }

func TestCreateAssetDerivesCategory(t *testing.T) {
	f := newFixture(t)

	a := f.asset(t, "LAP-100")
	assert.Equal(t, f.laptops.ID, a.CategoryID)
	assert.Equal(t, model.StatusReadyToDeploy, a.Status)
	assert.Nil(t, a.WorkstationID)
}

func TestCreateAssetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fields := requireValidation(t, func() error {
		_, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "  "})
		return err
	}())
	assert.Equal(t, "assetTag is required", fields["assetTag"])
	assert.Equal(t, "modelID is required", fields["modelID"])

	fields = requireValidation(t, func() error {
		_, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "X", ModelID: f.laptop.ID, Status: "Retired"})
		return err
	}())
	assert.Contains(t, fields, "assetStatus")

	_, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "X", ModelID: 999})
	requireNotFound(t, err, "model")
}

func TestCreateAssetBorrowRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.employee(t, "anovak")

	_, err := f.svc.CreateAsset(ctx, admin, AssetInput{
		Tag: "LAP-200", ModelID: f.laptop.ID, IsBorrowed: true,
		BorrowEmployeeID: &emp.ID, BorrowStartDate: strPtr("2024-05-10"), BorrowEndDate: strPtr("2024-05-01"),
	})
	fields := requireValidation(t, err)
	assert.Contains(t, fields, "borrowEndDate")

	missing := int64(999)
	_, err = f.svc.CreateAsset(ctx, admin, AssetInput{
		Tag: "LAP-200", ModelID: f.laptop.ID, IsBorrowed: true,
		BorrowEmployeeID: &missing, BorrowStartDate: strPtr("2024-05-01"), BorrowEndDate: strPtr("2024-05-10"),
	})
	requireNotFound(t, err, "employee")

	a, err := f.svc.CreateAsset(ctx, admin, AssetInput{
		Tag: "LAP-200", ModelID: f.laptop.ID, Status: model.StatusBorrowed, IsBorrowed: true,
		BorrowEmployeeID: &emp.ID, BorrowStartDate: strPtr("2024-05-01"), BorrowEndDate: strPtr("2024-05-10"),
	})
	require.NoError(t, err)
	assert.True(t, a.IsBorrowed)
	assert.Equal(t, "2024-05-10", *a.BorrowEndDate)

	// Clearing the flag drops the borrow details.
	a, err = f.svc.UpdateAsset(ctx, admin, a.ID, AssetInput{
		Tag: "LAP-200", ModelID: f.laptop.ID, Status: model.StatusReadyToDeploy,
		BorrowEmployeeID: &emp.ID, BorrowStartDate: strPtr("2024-05-01"),
	})
	require.NoError(t, err)
	assert.False(t, a.IsBorrowed)
	assert.Nil(t, a.BorrowEmployeeID)
}

func TestUpdateAssetRederivesCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.asset(t, "LAP-100")

	updated, err := f.svc.UpdateAsset(ctx, admin, a.ID, AssetInput{Tag: "MON-100", ModelID: f.monitor.ID})
	require.NoError(t, err)
	assert.Equal(t, f.monitors.ID, updated.CategoryID)
	assert.Equal(t, "MON-100", updated.Tag)
	assert.Equal(t, model.StatusReadyToDeploy, updated.Status, "empty status keeps the current one")

	_, err = f.svc.UpdateAsset(ctx, admin, 999, AssetInput{Tag: "X", ModelID: f.laptop.ID})
	requireNotFound(t, err, "asset")
}

func TestDuplicateAssetTag(t *testing.T) {
	f := newFixture(t)
	f.asset(t, "LAP-100")

	_, err := f.svc.CreateAsset(context.Background(), admin, AssetInput{Tag: "lap-100", ModelID: f.laptop.ID})
	conflict := requireConflict(t, err)
	assert.Equal(t, "assetTag", conflict.Field)
}

func TestAssignAndUnassignScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a10 := f.asset(t, "LAP-010")
	f.workstation(t, "WSM003")

	assigned, err := f.svc.Assign(ctx, admin, AssignRequest{
		AssetIDs: []int64{a10.ID}, WorkstationID: "wsm003", Status: model.StatusOnsite,
	})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "WSM003", *assigned[0].WorkstationID)
	assert.Equal(t, model.StatusOnsite, assigned[0].Status)

	// Deleting an assigned asset is refused and changes nothing.
	conflict := requireConflict(t, f.svc.DeleteAsset(ctx, admin, a10.ID))
	assert.Equal(t, "Asset LAP-010", conflict.Conflicts[0].Name)
	still, err := f.svc.GetAsset(ctx, a10.ID)
	require.NoError(t, err)
	assert.Equal(t, "WSM003", *still.WorkstationID)

	n, err := f.svc.Unassign(ctx, admin, BatchRequest{AssetIDs: []int64{a10.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.svc.Unassign(ctx, admin, BatchRequest{AssetIDs: []int64{a10.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := f.svc.GetAsset(ctx, a10.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WorkstationID)
	assert.Equal(t, model.StatusReadyToDeploy, got.Status)

	require.NoError(t, f.svc.DeleteAsset(ctx, admin, a10.ID))
	_, err = f.svc.GetAsset(ctx, a10.ID)
	requireNotFound(t, err, "asset")
}

func TestAssignBatchIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a10 := f.asset(t, "LAP-010")
	a11 := f.asset(t, "LAP-011")
	f.workstation(t, "WSM001")
	f.workstation(t, "WSM003")

	_, err := f.svc.Assign(ctx, admin, AssignRequest{AssetIDs: []int64{a11.ID}, WorkstationID: "WSM001", Status: model.StatusWFH})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, admin, AssignRequest{
		AssetIDs: []int64{a10.ID, a11.ID}, WorkstationID: "WSM003", Status: model.StatusOnsite,
	})
	conflict := requireConflict(t, err)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, "Asset LAP-011", conflict.Conflicts[0].Name)

	got, err := f.svc.GetAsset(ctx, a10.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WorkstationID)
}

func TestAssignValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.asset(t, "LAP-010")

	_, err := f.svc.Assign(ctx, admin, AssignRequest{})
	fields := requireValidation(t, err)
	assert.Contains(t, fields, "assetIds")
	assert.Contains(t, fields, "workStationID")
	assert.Contains(t, fields, "assetStatus")

	_, err = f.svc.Assign(ctx, admin, AssignRequest{AssetIDs: []int64{a.ID}, WorkstationID: "WSM001", Status: model.StatusDefective})
	fields = requireValidation(t, err)
	assert.Contains(t, fields, "assetStatus")

	_, err = f.svc.Assign(ctx, admin, AssignRequest{AssetIDs: []int64{a.ID}, WorkstationID: "WSM404", Status: model.StatusOnsite})
	requireNotFound(t, err, "workstation")
}

func TestBatchSizeIsLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := make([]int64, 1001)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	_, err := f.svc.Assign(ctx, admin, AssignRequest{AssetIDs: ids, WorkstationID: "WSM001", Status: model.StatusOnsite})
	fields := requireValidation(t, err)
	assert.Equal(t, "assetIds must contain at most 1000 items", fields["assetIds"])

	_, err = f.svc.Unassign(ctx, admin, BatchRequest{AssetIDs: ids})
	assert.Contains(t, requireValidation(t, err), "assetIds")

	_, err = f.svc.DeleteAssets(ctx, admin, BatchRequest{AssetIDs: ids})
	assert.Contains(t, requireValidation(t, err), "assetIds")
}

func TestBulkDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.asset(t, "LAP-001")
	b := f.asset(t, "LAP-002")

	n, err := f.svc.DeleteAssets(ctx, admin, BatchRequest{AssetIDs: []int64{a.ID, b.ID, a.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := f.svc.ListAssets(ctx, store.AssetFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.DeleteAssets(ctx, admin, BatchRequest{AssetIDs: []int64{a.ID}})
	requireNotFound(t, err, "asset")
}

func (f *fixture) upload(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{1, 2, 3, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	name, err := f.images.Save(&buf)
	require.NoError(t, err)
	return name
}

func TestAssetImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "LAP-1", ModelID: f.laptop.ID, ImagePath: "missing.jpg"})
	fields := requireValidation(t, err)
	assert.Contains(t, fields, "imagePath")

	first := f.upload(t)
	a, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "LAP-1", ModelID: f.laptop.ID, ImagePath: first})
	require.NoError(t, err)
	assert.Equal(t, first, a.ImagePath)

	second := f.upload(t)
	_, err = f.svc.SetAssetImage(ctx, admin, a.ID, second)
	require.NoError(t, err)
	assert.False(t, f.images.Exists(first), "replaced image is removed")

	_, err = f.svc.UpdateAsset(ctx, admin, a.ID, AssetInput{Tag: "LAP-1", ModelID: f.laptop.ID})
	require.NoError(t, err)
	assert.False(t, f.images.Exists(second), "cleared image is removed")
}

func TestSharedImageKeptWhileReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shared := f.upload(t)
	a, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "LAP-1", ModelID: f.laptop.ID, ImagePath: shared})
	require.NoError(t, err)
	b, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "LAP-2", ModelID: f.laptop.ID, ImagePath: shared})
	require.NoError(t, err)
	c, err := f.svc.CreateAsset(ctx, admin, AssetInput{Tag: "LAP-3", ModelID: f.laptop.ID, ImagePath: shared})
	require.NoError(t, err)

	_, err = f.svc.SetAssetImage(ctx, admin, a.ID, f.upload(t))
	require.NoError(t, err)
	assert.True(t, f.images.Exists(shared), "image still used by two assets")

	_, err = f.svc.UpdateAsset(ctx, admin, b.ID, AssetInput{Tag: "LAP-2", ModelID: f.laptop.ID})
	require.NoError(t, err)
	assert.True(t, f.images.Exists(shared), "image still used by one asset")

	require.NoError(t, f.svc.DeleteAsset(ctx, admin, c.ID))
	assert.False(t, f.images.Exists(shared), "last reference gone")
}

func TestListAssetsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.asset(t, "LAP-001")
	f.asset(t, "LAP-002")
	f.workstation(t, "WSM001")
	_, err := f.svc.Assign(ctx, admin, AssignRequest{AssetIDs: []int64{a.ID}, WorkstationID: "WSM001", Status: model.StatusOnsite})
	require.NoError(t, err)

	unassigned, err := f.svc.ListAssets(ctx, store.AssetFilter{Unassigned: true})
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, "LAP-002", unassigned[0].Tag)

	onsite, err := f.svc.ListAssets(ctx, store.AssetFilter{WorkstationID: "wsm001", Status: model.StatusOnsite})
	require.NoError(t, err)
	require.Len(t, onsite, 1)

	_, err = f.svc.ListAssets(ctx, store.AssetFilter{Status: "bogus"})
	requireValidation(t, err)
}
