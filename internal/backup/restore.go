package backup

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/db"
	"github.com/erazemk/assetdesk/internal/model"
)

const archiveSchema = "archive"

// Restore replaces the contents of every domain table with the contents of
// exactly one archive, in a single transaction. Settings and revoked tokens
// are kept, so the signing key and logouts survive a restore.
func (c *Coordinator) Restore(ctx context.Context, actor model.Actor, names []string) error {
	if len(names) != 1 {
		return &apperr.ValidationError{
			Fields:  map[string]string{"filename": "select exactly one backup to restore"},
			General: "select exactly one backup to restore",
		}
	}
	name := names[0]

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(names); err != nil {
		return err
	}

	if err := c.restoreFrom(ctx, name); err != nil {
		return err
	}

	c.Log.Info("backup restored", zap.String("file", name))
	c.Activity.Record(ctx, actor, model.ActionUpdate, "backups", name, "Restored backup "+name)
	return nil
}

// restoreFrom attaches the archive on a dedicated connection, which must be
// released before anything else touches the pool.
func (c *Coordinator) restoreFrom(ctx context.Context, name string) error {
	conn, err := c.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `ATTACH DATABASE ? AS `+archiveSchema, filepath.Join(c.Dir, name)); err != nil {
		return apperr.Upstream("opening backup "+name, err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), `DETACH DATABASE `+archiveSchema); err != nil {
			c.Log.Warn("detaching backup failed", zap.String("file", name), zap.Error(err))
		}
	}()

	return replaceTables(ctx, conn)
}

func replaceTables(ctx context.Context, conn *sql.Conn) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning restore: %w", err)
	}
	defer tx.Rollback()

	columns := make(map[string][]string, len(db.DomainTables))
	for _, table := range db.DomainTables {
		cols, err := sharedColumns(ctx, tx, table)
		if err != nil {
			return err
		}
		columns[table] = cols
	}

	// Children first so no foreign key is left dangling mid-way.
	for i := len(db.DomainTables) - 1; i >= 0; i-- {
		table := db.DomainTables[i]
		if _, err := tx.ExecContext(ctx, `DELETE FROM main.`+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	for _, table := range db.DomainTables {
		list := strings.Join(columns[table], ", ")
		_, err := tx.ExecContext(ctx,
			`INSERT INTO main.`+table+` (`+list+`) SELECT `+list+` FROM `+archiveSchema+`.`+table)
		if err != nil {
			return fmt.Errorf("restoring %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restore: %w", err)
	}
	return nil
}

// sharedColumns returns the columns table has in both the live database and
// the archive. An archive missing the table is not a usable backup.
func sharedColumns(ctx context.Context, q *sql.Tx, table string) ([]string, error) {
	live, err := tableColumns(ctx, q, "main", table)
	if err != nil {
		return nil, err
	}
	archived, err := tableColumns(ctx, q, archiveSchema, table)
	if err != nil {
		return nil, err
	}
	if len(archived) == 0 {
		return nil, apperr.Invalid("filename", fmt.Sprintf("backup has no %s table", table))
	}

	have := make(map[string]bool, len(archived))
	for _, c := range archived {
		have[c] = true
	}
	var out []string
	for _, c := range live {
		if have[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

func tableColumns(ctx context.Context, q *sql.Tx, schema, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT name FROM pragma_table_info(?, ?)`, table, schema)
	if err != nil {
		return nil, fmt.Errorf("reading %s.%s columns: %w", schema, table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
