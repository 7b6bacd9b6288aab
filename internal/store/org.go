package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetdesk/internal/model"
)

// CreateCompany creates a new company.
func CreateCompany(ctx context.Context, q Querier, name string) (*model.Company, error) {
	result, err := q.ExecContext(ctx, `INSERT INTO companies (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting company id: %w", err)
	}
	return GetCompany(ctx, q, id)
}

// GetCompany returns a company by ID.
func GetCompany(ctx context.Context, q Querier, id int64) (*model.Company, error) {
	c := &model.Company{}
	err := q.QueryRowContext(ctx, `SELECT id, name FROM companies WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return c, nil
}

// ListCompanies returns all companies by name.
func ListCompanies(ctx context.Context, q Querier) ([]model.Company, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCompany renames a company.
func UpdateCompany(ctx context.Context, q Querier, id int64, name string) error {
	if _, err := q.ExecContext(ctx, `UPDATE companies SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("updating company: %w", err)
	}
	return nil
}

// DeleteCompany deletes a company no department belongs to.
func DeleteCompany(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = inUse(ctx, tx, "company still has departments", "departments",
		`SELECT id, name FROM departments WHERE company_id = ? ORDER BY name`, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting company: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing company deletion: %w", err)
	}
	return nil
}

const departmentSelect = `SELECT d.id, d.name, d.company_id, COALESCE(c.name, '') AS company_name
 FROM departments d
 LEFT JOIN companies c ON c.id = d.company_id`

func scanDepartment(s rowScanner) (*model.Department, error) {
	d := &model.Department{}
	var companyID sql.NullInt64
	if err := s.Scan(&d.ID, &d.Name, &companyID, &d.CompanyName); err != nil {
		return nil, err
	}
	d.CompanyID = int64Ptr(companyID)
	return d, nil
}

// CreateDepartment creates a new department.
func CreateDepartment(ctx context.Context, q Querier, name string, companyID *int64) (*model.Department, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO departments (name, company_id) VALUES (?, ?)`, name, nullInt64(companyID))
	if err != nil {
		return nil, fmt.Errorf("creating department: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting department id: %w", err)
	}
	return GetDepartment(ctx, q, id)
}

// GetDepartment returns a department by ID.
func GetDepartment(ctx context.Context, q Querier, id int64) (*model.Department, error) {
	d, err := scanDepartment(q.QueryRowContext(ctx, departmentSelect+` WHERE d.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return d, nil
}

// ListDepartments returns departments, optionally of one company.
func ListDepartments(ctx context.Context, q Querier, companyID int64) ([]model.Department, error) {
	var rows *sql.Rows
	var err error
	if companyID > 0 {
		rows, err = q.QueryContext(ctx, departmentSelect+` WHERE d.company_id = ? ORDER BY d.name`, companyID)
	} else {
		rows, err = q.QueryContext(ctx, departmentSelect+` ORDER BY d.name`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var out []model.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateDepartment updates a department.
func UpdateDepartment(ctx context.Context, q Querier, id int64, name string, companyID *int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE departments SET name = ?, company_id = ? WHERE id = ?`, name, nullInt64(companyID), id)
	if err != nil {
		return fmt.Errorf("updating department: %w", err)
	}
	return nil
}

// DeleteDepartment deletes a department.
func DeleteDepartment(ctx context.Context, q Querier, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting department: %w", err)
	}
	return nil
}
