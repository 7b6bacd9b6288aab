package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: activity listing filters by table and sorts by time.
	`CREATE INDEX IF NOT EXISTS idx_activity_logs_created
	     ON activity_logs(created_at DESC)`,
	// Migration 2: workstation lookups by employee.
	`CREATE INDEX IF NOT EXISTS idx_workstations_employee
	     ON workstations(employee_id)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
