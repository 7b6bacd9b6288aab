package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

const assetSelect = `SELECT a.id, a.name, a.tag, a.serial_number, a.model_id, a.category_id, a.status,
        a.image_path, a.workstation_id, a.is_borrowed, a.borrow_employee_id,
        a.borrow_start_date, a.borrow_end_date, a.created_at, a.updated_at,
        m.name AS model_name, c.name AS category_name
 FROM assets a
 JOIN models m ON m.id = a.model_id
 JOIN categories c ON c.id = a.category_id`

// AssetFilter narrows ListAssets. Zero values disable a filter.
type AssetFilter struct {
	Unassigned    bool
	Status        string
	WorkstationID string
	ModelID       int64
	CategoryID    int64
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(s rowScanner) (*model.Asset, error) {
	a := &model.Asset{}
	var workstationID, start, end sql.NullString
	var borrowEmployee sql.NullInt64
	err := s.Scan(&a.ID, &a.Name, &a.Tag, &a.SerialNumber, &a.ModelID, &a.CategoryID, &a.Status,
		&a.ImagePath, &workstationID, &a.IsBorrowed, &borrowEmployee,
		&start, &end, &a.CreatedAt, &a.UpdatedAt,
		&a.ModelName, &a.CategoryName)
	if err != nil {
		return nil, err
	}
	a.WorkstationID = stringPtr(workstationID)
	a.BorrowEmployeeID = int64Ptr(borrowEmployee)
	a.BorrowStartDate = stringPtr(start)
	a.BorrowEndDate = stringPtr(end)
	return a, nil
}

// CreateAsset inserts an unassigned asset. The caller derives CategoryID
// from the model.
func CreateAsset(ctx context.Context, q Querier, a *model.Asset) (*model.Asset, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO assets (name, tag, serial_number, model_id, category_id, status, image_path,
		                     is_borrowed, borrow_employee_id, borrow_start_date, borrow_end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Tag, a.SerialNumber, a.ModelID, a.CategoryID, a.Status, a.ImagePath,
		a.IsBorrowed, nullInt64(a.BorrowEmployeeID), nullString(a.BorrowStartDate), nullString(a.BorrowEndDate),
	)
	if isUniqueViolation(err) {
		return nil, tagConflict(a.Tag)
	}
	if err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting asset id: %w", err)
	}

	return GetAsset(ctx, q, id)
}

func tagConflict(tag string) error {
	return &apperr.ConflictError{
		Message:   "asset tag already in use",
		Field:     "assetTag",
		Conflicts: []apperr.Ref{{Table: "assets", ID: tag, Name: tag}},
	}
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, q Querier, id int64) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, assetSelect+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// GetAssetByTag returns an asset by tag, compared case-insensitively.
func GetAssetByTag(ctx context.Context, q Querier, tag string) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, assetSelect+` WHERE a.tag = ? COLLATE NOCASE`, tag))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset by tag: %w", err)
	}
	return a, nil
}

// ListAssets returns assets matching the filter, ordered by tag.
func ListAssets(ctx context.Context, q Querier, f AssetFilter) ([]model.Asset, error) {
	query := assetSelect + ` WHERE 1=1`
	var args []any

	if f.Unassigned {
		query += ` AND a.workstation_id IS NULL`
	}
	if f.Status != "" {
		query += ` AND a.status = ?`
		args = append(args, f.Status)
	}
	if f.WorkstationID != "" {
		query += ` AND a.workstation_id = ?`
		args = append(args, f.WorkstationID)
	}
	if f.ModelID > 0 {
		query += ` AND a.model_id = ?`
		args = append(args, f.ModelID)
	}
	if f.CategoryID > 0 {
		query += ` AND a.category_id = ?`
		args = append(args, f.CategoryID)
	}

	query += ` ORDER BY a.tag`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func collectAssets(rows *sql.Rows) ([]model.Asset, error) {
	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// UpdateAsset writes every editable field. The workstation binding is not
// touched; it only changes through AssignAssets and UnassignAssets.
func UpdateAsset(ctx context.Context, q Querier, a *model.Asset) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET name = ?, tag = ?, serial_number = ?, model_id = ?, category_id = ?,
		        status = ?, image_path = ?, is_borrowed = ?, borrow_employee_id = ?,
		        borrow_start_date = ?, borrow_end_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.Name, a.Tag, a.SerialNumber, a.ModelID, a.CategoryID,
		a.Status, a.ImagePath, a.IsBorrowed, nullInt64(a.BorrowEmployeeID),
		nullString(a.BorrowStartDate), nullString(a.BorrowEndDate), a.ID,
	)
	if isUniqueViolation(err) {
		return tagConflict(a.Tag)
	}
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	return nil
}

// SetAssetImage replaces an asset's image path.
func SetAssetImage(ctx context.Context, q Querier, id int64, path string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE assets SET image_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		path, id,
	)
	if err != nil {
		return fmt.Errorf("setting asset image: %w", err)
	}
	return nil
}

// CountAssetsWithImage returns how many assets reference the image file.
func CountAssetsWithImage(ctx context.Context, q Querier, path string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets WHERE image_path = ?`, path).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting image references: %w", err)
	}
	return n, nil
}

// loadAssets returns the requested assets keyed by id and fails with a
// NotFoundError naming every id that does not exist.
func loadAssets(ctx context.Context, q Querier, ids []int64) (map[int64]*model.Asset, error) {
	rows, err := q.QueryContext(ctx,
		assetSelect+` WHERE a.id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]*model.Asset, len(ids))
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		found[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.NotFoundError{Entity: "asset", ID: strings.Join(missing, ", ")}
	}
	return found, nil
}

func assetRef(a *model.Asset) apperr.Ref {
	return apperr.Ref{Table: "assets", ID: fmt.Sprint(a.ID), Name: a.DisplayName()}
}

// AssignAssets binds every asset in ids to the workstation and sets its
// status, in one transaction. If any asset is already bound the whole batch
// is rejected with a ConflictError listing those assets and nothing changes.
func AssignAssets(ctx context.Context, db *sql.DB, ids []int64, workstationID, status string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workstations WHERE id = ?`, workstationID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking workstation: %w", err)
	}
	if exists == 0 {
		return apperr.NotFound("workstation", workstationID)
	}

	assets, err := loadAssets(ctx, tx, ids)
	if err != nil {
		return err
	}

	// Check every precondition before the first write.
	var conflicts []apperr.Ref
	for _, id := range ids {
		if a := assets[id]; a.Assigned() {
			conflicts = append(conflicts, assetRef(a))
		}
	}
	if len(conflicts) > 0 {
		return &apperr.ConflictError{Message: "assets already assigned", Conflicts: conflicts}
	}

	args := append([]any{workstationID, status}, int64Args(ids)...)
	_, err = tx.ExecContext(ctx,
		`UPDATE assets SET workstation_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("assigning assets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignment: %w", err)
	}
	return nil
}

// UnassignAssets clears the workstation of every asset in ids. Assets that
// were in service return to Ready to Deploy; other statuses are kept.
// Already-unassigned assets are left alone, so repeating the call is a no-op.
// It returns the number of assets that were actually unbound.
func UnassignAssets(ctx context.Context, db *sql.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := loadAssets(ctx, tx, ids); err != nil {
		return 0, err
	}

	args := append([]any{model.StatusOnsite, model.StatusWFH, model.StatusTemporarilyDeployed, model.StatusReadyToDeploy},
		int64Args(ids)...)
	result, err := tx.ExecContext(ctx,
		`UPDATE assets
		 SET workstation_id = NULL,
		     status = CASE WHEN status IN (?, ?, ?) THEN ? ELSE status END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE workstation_id IS NOT NULL AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("unassigning assets: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting unassigned assets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing unassignment: %w", err)
	}
	return n, nil
}

// DeleteAssets deletes every asset in ids, all or nothing. Assigned assets
// block the whole batch with a ConflictError. The deleted rows are returned
// so the caller can clean up their images.
func DeleteAssets(ctx context.Context, db *sql.DB, ids []int64) ([]model.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	assets, err := loadAssets(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var conflicts []apperr.Ref
	deleted := make([]model.Asset, 0, len(ids))
	for _, id := range ids {
		a := assets[id]
		if a.Assigned() {
			conflicts = append(conflicts, assetRef(a))
		}
		deleted = append(deleted, *a)
	}
	if len(conflicts) > 0 {
		return nil, &apperr.ConflictError{Message: "assets must be unassigned before deletion", Conflicts: conflicts}
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM assets WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("deleting assets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing deletion: %w", err)
	}
	return deleted, nil
}
