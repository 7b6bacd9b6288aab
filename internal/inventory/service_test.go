package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/imaging"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

var admin = model.Actor{UserID: 1, Username: "admin"}

type fixture struct {
	svc      *Service
	images   *imaging.Store
	laptop   *model.AssetModel
	monitor  *model.AssetModel
	laptops  *model.Category
	monitors *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	images, err := imaging.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	svc := New(db.NewTestDB(t), images, zap.NewNop())

	mf, err := svc.CreateManufacturer(ctx, admin, ManufacturerInput{Name: "Dell"})
	require.NoError(t, err)
	laptops, err := svc.CreateCategory(ctx, admin, CategoryInput{Name: "Laptops"})
	require.NoError(t, err)
	monitors, err := svc.CreateCategory(ctx, admin, CategoryInput{Name: "Monitors"})
	require.NoError(t, err)
	laptop, err := svc.CreateModel(ctx, admin, ModelInput{Name: "Latitude", ManufacturerID: mf.ID, CategoryID: laptops.ID})
	require.NoError(t, err)
	monitor, err := svc.CreateModel(ctx, admin, ModelInput{Name: "P2723", ManufacturerID: mf.ID, CategoryID: monitors.ID})
	require.NoError(t, err)

	return &fixture{svc: svc, images: images, laptop: laptop, monitor: monitor, laptops: laptops, monitors: monitors}
}

func (f *fixture) asset(t *testing.T, tag string) *model.Asset {
	t.Helper()
	a, err := f.svc.CreateAsset(context.Background(), admin, AssetInput{Name: "Asset " + tag, Tag: tag, ModelID: f.laptop.ID})
	require.NoError(t, err)
	return a
}

func (f *fixture) workstation(t *testing.T, id string) *model.Workstation {
	t.Helper()
	w, err := f.svc.CreateWorkstation(context.Background(), admin, WorkstationInput{ID: id})
	require.NoError(t, err)
	return w
}

func (f *fixture) employee(t *testing.T, username string) *model.Employee {
	t.Helper()
	e, err := f.svc.CreateEmployee(context.Background(), admin, EmployeeInput{
		FirstName: "Ana", LastName: "Novak", Username: username, Department: "IT",
	})
	require.NoError(t, err)
	return e
}

func requireConflict(t *testing.T, err error) *apperr.ConflictError {
	t.Helper()
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	return conflict
}

func requireValidation(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func requireNotFound(t *testing.T, err error, entity string) {
	t.Helper()
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf), "expected not found, got %v", err)
	assert.Equal(t, entity, nf.Entity)
}

func TestActivityIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.asset(t, "LAP-100")
	require.NoError(t, f.svc.DeleteAsset(ctx, model.Actor{UserID: 2, Username: "manager"}, a.ID))

	logs, err := f.svc.Activity.List(ctx, store.ActivityFilter{TableName: "assets"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionDelete, logs[0].Action)
	assert.Equal(t, "manager", logs[0].PerformedBy)
	assert.Equal(t, model.ActionCreate, logs[1].Action)
	assert.Equal(t, "admin", logs[1].PerformedBy)
	assert.Contains(t, logs[1].Description, "LAP-100")
}

func TestRejectedOperationsAreNotRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAsset(ctx, admin, AssetInput{})
	requireValidation(t, err)

	logs, err := f.svc.Activity.List(ctx, store.ActivityFilter{TableName: "assets"})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
