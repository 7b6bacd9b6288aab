package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/assetdesk/internal/model"
)

// catalog is a minimal manufacturer/category/model set for asset tests.
type catalog struct {
	manufacturer *model.Manufacturer
	laptops      *model.Category
	monitors     *model.Category
	laptop       *model.AssetModel
}

func seedCatalog(t *testing.T, database *sql.DB) catalog {
	t.Helper()
	ctx := context.Background()

	mf, err := CreateManufacturer(ctx, database, "Dell", 0)
	require.NoError(t, err)
	laptops, err := CreateCategory(ctx, database, "Laptops", "hardware", 0)
	require.NoError(t, err)
	monitors, err := CreateCategory(ctx, database, "Monitors", "hardware", 0)
	require.NoError(t, err)
	laptop, err := CreateModel(ctx, database, &model.AssetModel{
		Name: "Latitude 7440", ManufacturerID: mf.ID, CategoryID: laptops.ID,
	})
	require.NoError(t, err)

	return catalog{manufacturer: mf, laptops: laptops, monitors: monitors, laptop: laptop}
}

func seedAsset(t *testing.T, database *sql.DB, c catalog, tag string) *model.Asset {
	t.Helper()
	a, err := CreateAsset(context.Background(), database, &model.Asset{
		Name:       "Laptop " + tag,
		Tag:        tag,
		ModelID:    c.laptop.ID,
		CategoryID: c.laptop.CategoryID,
		Status:     model.StatusReadyToDeploy,
	})
	require.NoError(t, err)
	return a
}

func seedEmployee(t *testing.T, database *sql.DB, username string) *model.Employee {
	t.Helper()
	e, err := CreateEmployee(context.Background(), database, &model.Employee{
		FirstName:  "Ana",
		LastName:   "Novak",
		Username:   username,
		Department: "IT",
		Status:     model.EmployeeActive,
	})
	require.NoError(t, err)
	return e
}

func seedWorkstation(t *testing.T, database *sql.DB, id string, employeeID *int64) *model.Workstation {
	t.Helper()
	w, err := CreateWorkstation(context.Background(), database, id, "Desk "+id, employeeID)
	require.NoError(t, err)
	return w
}
