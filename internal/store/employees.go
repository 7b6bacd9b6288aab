package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

const employeeSelect = `SELECT id, first_name, last_name, username, department, status, created_at, updated_at
 FROM employees`

func scanEmployee(s rowScanner) (*model.Employee, error) {
	e := &model.Employee{}
	err := s.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Username, &e.Department, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func usernameConflict(username string) error {
	return &apperr.ConflictError{
		Message:   "username already in use",
		Field:     "username",
		Conflicts: []apperr.Ref{{Table: "employees", ID: username, Name: username}},
	}
}

// CreateEmployee creates a new employee.
func CreateEmployee(ctx context.Context, q Querier, e *model.Employee) (*model.Employee, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO employees (first_name, last_name, username, department, status) VALUES (?, ?, ?, ?, ?)`,
		e.FirstName, e.LastName, e.Username, e.Department, e.Status,
	)
	if isUniqueViolation(err) {
		return nil, usernameConflict(e.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("creating employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting employee id: %w", err)
	}
	return GetEmployee(ctx, q, id)
}

// GetEmployee returns an employee by ID.
func GetEmployee(ctx context.Context, q Querier, id int64) (*model.Employee, error) {
	e, err := scanEmployee(q.QueryRowContext(ctx, employeeSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting employee: %w", err)
	}
	return e, nil
}

// ListEmployees returns employees, optionally filtered by status and department.
func ListEmployees(ctx context.Context, q Querier, status, department string) ([]model.Employee, error) {
	query := employeeSelect + ` WHERE 1=1`
	var args []any
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if department != "" {
		query += ` AND department = ?`
		args = append(args, department)
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpdateEmployee writes every editable field.
func UpdateEmployee(ctx context.Context, q Querier, e *model.Employee) error {
	_, err := q.ExecContext(ctx,
		`UPDATE employees SET first_name = ?, last_name = ?, username = ?, department = ?, status = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.FirstName, e.LastName, e.Username, e.Department, e.Status, e.ID,
	)
	if isUniqueViolation(err) {
		return usernameConflict(e.Username)
	}
	if err != nil {
		return fmt.Errorf("updating employee: %w", err)
	}
	return nil
}

// DeleteEmployee deletes an employee. Fails while the employee owns a
// workstation or borrows an asset.
func DeleteEmployee(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = inUse(ctx, tx, "employee still owns workstations", "workstations",
		`SELECT id, name FROM workstations WHERE employee_id = ? ORDER BY id`, id)
	if err != nil {
		return err
	}
	err = inUse(ctx, tx, "employee still borrows assets", "assets",
		`SELECT id, CASE WHEN name <> '' THEN name ELSE tag END FROM assets WHERE borrow_employee_id = ? ORDER BY tag`, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting employee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing employee deletion: %w", err)
	}
	return nil
}
