package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCategoryChangeMovesAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.asset(t, "LAP-001")

	m, err := f.svc.UpdateModel(ctx, admin, f.laptop.ID, ModelInput{
		Name: f.laptop.Name, ManufacturerID: f.laptop.ManufacturerID, CategoryID: f.monitors.ID, Count: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, f.monitors.ID, m.CategoryID)
	assert.Equal(t, 4, m.Count)

	got, err := f.svc.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.monitors.ID, got.CategoryID)
}

func TestCatalogReferenceGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.asset(t, "LAP-001")

	requireConflict(t, f.svc.DeleteModel(ctx, admin, f.laptop.ID))
	requireConflict(t, f.svc.DeleteCategory(ctx, admin, f.laptops.ID))
	requireConflict(t, f.svc.DeleteManufacturer(ctx, admin, f.laptop.ManufacturerID))

	require.NoError(t, f.svc.DeleteModel(ctx, admin, f.monitor.ID))
	require.NoError(t, f.svc.DeleteCategory(ctx, admin, f.monitors.ID))

	requireNotFound(t, f.svc.DeleteCategory(ctx, admin, f.monitors.ID), "category")
}

func TestCatalogValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateModel(ctx, admin, ModelInput{Name: "X", ManufacturerID: 999, CategoryID: f.laptops.ID})
	requireNotFound(t, err, "manufacturer")

	_, err = f.svc.CreateCategory(ctx, admin, CategoryInput{Name: "", Count: -1})
	fields := requireValidation(t, err)
	assert.Contains(t, fields, "categoryName")
	assert.Contains(t, fields, "categoryCount")

	list, err := f.svc.ListModels(ctx, f.laptops.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEmployeesAndOrg(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEmployee(ctx, admin, EmployeeInput{FirstName: "A", LastName: "B", Username: "ab", Department: "Legal"})
	fields := requireValidation(t, err)
	assert.Contains(t, fields, "department")

	e := f.employee(t, "anovak")
	assert.Equal(t, "active", e.Status)
	_, err = f.svc.CreateEmployee(ctx, admin, EmployeeInput{FirstName: "A", LastName: "B", Username: "ANOVAK", Department: "HR"})
	requireConflict(t, err)

	e, err = f.svc.UpdateEmployee(ctx, admin, e.ID, EmployeeInput{FirstName: "Ana", LastName: "Kos", Username: "akos", Department: "HR", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "Kos", e.LastName)

	co, err := f.svc.CreateCompany(ctx, admin, CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	missing := int64(404)
	_, err = f.svc.CreateDepartment(ctx, admin, DepartmentInput{Name: "IT", CompanyID: &missing})
	requireNotFound(t, err, "company")
	d, err := f.svc.CreateDepartment(ctx, admin, DepartmentInput{Name: "IT", CompanyID: &co.ID})
	require.NoError(t, err)

	requireConflict(t, f.svc.DeleteCompany(ctx, admin, co.ID))
	require.NoError(t, f.svc.DeleteDepartment(ctx, admin, d.ID))
	require.NoError(t, f.svc.DeleteCompany(ctx, admin, co.ID))

	require.NoError(t, f.svc.DeleteEmployee(ctx, admin, e.ID))
}
