package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

const workstationSelect = `SELECT w.id, w.name, w.employee_id, w.is_default, w.created_at, w.updated_at,
        (SELECT COUNT(*) FROM assets a WHERE a.workstation_id = w.id) AS asset_count,
        COALESCE(e.first_name || ' ' || e.last_name, '') AS employee_name
 FROM workstations w
 LEFT JOIN employees e ON e.id = w.employee_id`

func scanWorkstation(s rowScanner) (*model.Workstation, error) {
	w := &model.Workstation{}
	var employeeID sql.NullInt64
	err := s.Scan(&w.ID, &w.Name, &employeeID, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt,
		&w.AssetCount, &w.EmployeeName)
	if err != nil {
		return nil, err
	}
	w.EmployeeID = int64Ptr(employeeID)
	return w, nil
}

// CreateWorkstation inserts a workstation. id must already be normalised.
func CreateWorkstation(ctx context.Context, q Querier, id, name string, employeeID *int64) (*model.Workstation, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO workstations (id, name, employee_id) VALUES (?, ?, ?)`,
		id, name, nullInt64(employeeID),
	)
	if isUniqueViolation(err) {
		return nil, &apperr.ConflictError{
			Message:   "workstation already exists",
			Field:     "workStationID",
			Conflicts: []apperr.Ref{{Table: "workstations", ID: id}},
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating workstation: %w", err)
	}
	return GetWorkstation(ctx, q, id)
}

// GetWorkstation returns a workstation by code.
func GetWorkstation(ctx context.Context, q Querier, id string) (*model.Workstation, error) {
	w, err := scanWorkstation(q.QueryRowContext(ctx, workstationSelect+` WHERE w.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting workstation: %w", err)
	}
	return w, nil
}

// ListWorkstations returns all workstations, or only those of one employee.
func ListWorkstations(ctx context.Context, q Querier, employeeID int64) ([]model.Workstation, error) {
	var rows *sql.Rows
	var err error

	if employeeID > 0 {
		rows, err = q.QueryContext(ctx, workstationSelect+` WHERE w.employee_id = ? ORDER BY w.id`, employeeID)
	} else {
		rows, err = q.QueryContext(ctx, workstationSelect+` ORDER BY w.id`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing workstations: %w", err)
	}
	defer rows.Close()

	var out []model.Workstation
	for rows.Next() {
		w, err := scanWorkstation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workstation: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func boundAssets(ctx context.Context, q Querier, workstationID string) ([]apperr.Ref, error) {
	return refs(ctx, q, "assets",
		`SELECT id, CASE WHEN name <> '' THEN name ELSE tag END FROM assets WHERE workstation_id = ? ORDER BY tag`,
		workstationID)
}

// UpdateWorkstation changes a workstation's name and employee. Moving a
// workstation that still has assets to another employee requires
// confirmTransfer; without it a ConflictError lists the bound assets. The
// assets follow the workstation, so they need no update of their own.
func UpdateWorkstation(ctx context.Context, db *sql.DB, id, name string, employeeID *int64, confirmTransfer bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := GetWorkstation(ctx, tx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return apperr.NotFound("workstation", id)
	}

	ownerChanged := !sameEmployee(current.EmployeeID, employeeID)
	if ownerChanged && current.AssetCount > 0 && !confirmTransfer {
		bound, err := boundAssets(ctx, tx, id)
		if err != nil {
			return err
		}
		return &apperr.ConflictError{
			Message:   "workstation has assigned assets; confirm the transfer to change its employee",
			Field:     "employeeID",
			Conflicts: bound,
		}
	}

	isDefault := current.IsDefault && !ownerChanged
	_, err = tx.ExecContext(ctx,
		`UPDATE workstations SET name = ?, employee_id = ?, is_default = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, nullInt64(employeeID), isDefault, id,
	)
	if err != nil {
		return fmt.Errorf("updating workstation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workstation update: %w", err)
	}
	return nil
}

func sameEmployee(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DeleteWorkstation deletes a workstation that has no assets bound to it.
func DeleteWorkstation(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := GetWorkstation(ctx, tx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return apperr.NotFound("workstation", id)
	}

	bound, err := boundAssets(ctx, tx, id)
	if err != nil {
		return err
	}
	if len(bound) > 0 {
		return &apperr.ConflictError{Message: "cannot delete workstation with assigned assets", Conflicts: bound}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM workstations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting workstation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workstation deletion: %w", err)
	}
	return nil
}

// NextWorkstationCode returns the next free WSM code, zero-padded to three
// digits (WSM001, WSM002, ...).
func NextWorkstationCode(ctx context.Context, q Querier) (string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM workstations WHERE id LIKE ?`, model.WorkstationPrefix+"%")
	if err != nil {
		return "", fmt.Errorf("listing workstation codes: %w", err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning workstation code: %w", err)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, model.WorkstationPrefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if highest == math.MaxInt {
		return "", &apperr.ConflictError{
			Message: "no workstation code left to allocate",
			Field:   "workStationID",
		}
	}
	return fmt.Sprintf("%s%03d", model.WorkstationPrefix, highest+1), nil
}

// EnsureDefaultWorkstation returns the employee's default workstation,
// creating it first when missing. The insert goes through the partial
// unique index on (employee_id) WHERE is_default = 1, so a concurrent
// second creation is ignored and both callers read back the same row.
func EnsureDefaultWorkstation(ctx context.Context, db *sql.DB, employeeID int64) (*model.Workstation, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	emp, err := GetEmployee(ctx, tx, employeeID)
	if err != nil {
		return nil, false, err
	}
	if emp == nil {
		return nil, false, apperr.NotFound("employee", employeeID)
	}

	existing, err := scanWorkstation(tx.QueryRowContext(ctx,
		workstationSelect+` WHERE w.employee_id = ? AND w.is_default = 1`, employeeID))
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("getting default workstation: %w", err)
	}

	code, err := NextWorkstationCode(ctx, tx)
	if err != nil {
		return nil, false, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO workstations (id, name, employee_id, is_default) VALUES (?, ?, ?, 1)
		 ON CONFLICT DO NOTHING`,
		code, emp.FullName(), employeeID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating default workstation: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("checking default workstation insert: %w", err)
	}

	// Always read back (either our insert or the existing default).
	ws, err := scanWorkstation(tx.QueryRowContext(ctx,
		workstationSelect+` WHERE w.employee_id = ? AND w.is_default = 1`, employeeID))
	if err == sql.ErrNoRows {
		return nil, false, fmt.Errorf("default workstation for employee %d missing after insert", employeeID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting default workstation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing default workstation: %w", err)
	}
	return ws, inserted == 1, nil
}
