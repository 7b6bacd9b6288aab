package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/assetdesk/internal/model"
)

// CreateManufacturer creates a new manufacturer.
func CreateManufacturer(ctx context.Context, q Querier, name string, count int) (*model.Manufacturer, error) {
	result, err := q.ExecContext(ctx, `INSERT INTO manufacturers (name, count) VALUES (?, ?)`, name, count)
	if err != nil {
		return nil, fmt.Errorf("creating manufacturer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting manufacturer id: %w", err)
	}
	return GetManufacturer(ctx, q, id)
}

// GetManufacturer returns a manufacturer by ID.
func GetManufacturer(ctx context.Context, q Querier, id int64) (*model.Manufacturer, error) {
	m := &model.Manufacturer{}
	err := q.QueryRowContext(ctx, `SELECT id, name, count FROM manufacturers WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting manufacturer: %w", err)
	}
	return m, nil
}

// ListManufacturers returns all manufacturers by name.
func ListManufacturers(ctx context.Context, q Querier) ([]model.Manufacturer, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, count FROM manufacturers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing manufacturers: %w", err)
	}
	defer rows.Close()

	var out []model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.Count); err != nil {
			return nil, fmt.Errorf("scanning manufacturer: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateManufacturer updates a manufacturer.
func UpdateManufacturer(ctx context.Context, q Querier, id int64, name string, count int) error {
	_, err := q.ExecContext(ctx, `UPDATE manufacturers SET name = ?, count = ? WHERE id = ?`, name, count, id)
	if err != nil {
		return fmt.Errorf("updating manufacturer: %w", err)
	}
	return nil
}

// DeleteManufacturer deletes a manufacturer no model references.
func DeleteManufacturer(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = inUse(ctx, tx, "manufacturer is used by models", "models",
		`SELECT id, name FROM models WHERE manufacturer_id = ? ORDER BY name`, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM manufacturers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting manufacturer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing manufacturer deletion: %w", err)
	}
	return nil
}

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, q Querier, name, categoryType string, count int) (*model.Category, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO categories (name, type, count) VALUES (?, ?, ?)`, name, categoryType, count)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}
	return GetCategory(ctx, q, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, q Querier, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := q.QueryRowContext(ctx, `SELECT id, name, type, count FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.Count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories by name.
func ListCategories(ctx context.Context, q Querier) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, type, count FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory updates a category.
func UpdateCategory(ctx context.Context, q Querier, id int64, name, categoryType string, count int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, count = ? WHERE id = ?`, name, categoryType, count, id)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return nil
}

// DeleteCategory deletes a category no model references. Assets carry the
// category of their model, so checking models covers them too.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = inUse(ctx, tx, "category is used by models", "models",
		`SELECT id, name FROM models WHERE category_id = ? ORDER BY name`, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing category deletion: %w", err)
	}
	return nil
}

const modelSelect = `SELECT m.id, m.name, m.manufacturer_id, m.category_id, m.count,
        mf.name AS manufacturer_name, c.name AS category_name
 FROM models m
 JOIN manufacturers mf ON mf.id = m.manufacturer_id
 JOIN categories c ON c.id = m.category_id`

func scanModel(s rowScanner) (*model.AssetModel, error) {
	m := &model.AssetModel{}
	err := s.Scan(&m.ID, &m.Name, &m.ManufacturerID, &m.CategoryID, &m.Count, &m.ManufacturerName, &m.CategoryName)
	return m, err
}

// CreateModel creates a new asset model.
func CreateModel(ctx context.Context, q Querier, m *model.AssetModel) (*model.AssetModel, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO models (name, manufacturer_id, category_id, count) VALUES (?, ?, ?, ?)`,
		m.Name, m.ManufacturerID, m.CategoryID, m.Count,
	)
	if err != nil {
		return nil, fmt.Errorf("creating model: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting model id: %w", err)
	}
	return GetModel(ctx, q, id)
}

// GetModel returns an asset model by ID.
func GetModel(ctx context.Context, q Querier, id int64) (*model.AssetModel, error) {
	m, err := scanModel(q.QueryRowContext(ctx, modelSelect+` WHERE m.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting model: %w", err)
	}
	return m, nil
}

// ListModels returns asset models, optionally filtered by category.
func ListModels(ctx context.Context, q Querier, categoryID int64) ([]model.AssetModel, error) {
	var rows *sql.Rows
	var err error
	if categoryID > 0 {
		rows, err = q.QueryContext(ctx, modelSelect+` WHERE m.category_id = ? ORDER BY m.name`, categoryID)
	} else {
		rows, err = q.QueryContext(ctx, modelSelect+` ORDER BY m.name`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer rows.Close()

	var out []model.AssetModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// UpdateModel updates an asset model. When the category changes, every
// asset of the model follows in the same transaction.
func UpdateModel(ctx context.Context, db *sql.DB, m *model.AssetModel) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE models SET name = ?, manufacturer_id = ?, category_id = ?, count = ? WHERE id = ?`,
		m.Name, m.ManufacturerID, m.CategoryID, m.Count, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating model: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE assets SET category_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE model_id = ? AND category_id <> ?`,
		m.CategoryID, m.ID, m.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("updating asset categories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing model update: %w", err)
	}
	return nil
}

// DeleteModel deletes an asset model no asset references.
func DeleteModel(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = inUse(ctx, tx, "model is used by assets", "assets",
		`SELECT id, CASE WHEN name <> '' THEN name ELSE tag END FROM assets WHERE model_id = ? ORDER BY tag`, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting model: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing model deletion: %w", err)
	}
	return nil
}
