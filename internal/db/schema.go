package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS companies (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS departments (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    company_id INTEGER REFERENCES companies(id)
);

CREATE TABLE IF NOT EXISTS manufacturers (
    id    INTEGER PRIMARY KEY,
    name  TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
    id    INTEGER PRIMARY KEY,
    name  TEXT NOT NULL,
    type  TEXT NOT NULL DEFAULT '',
    count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS models (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    manufacturer_id INTEGER NOT NULL REFERENCES manufacturers(id),
    category_id     INTEGER NOT NULL REFERENCES categories(id),
    count           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS employees (
    id         INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name  TEXT NOT NULL,
    username   TEXT NOT NULL,
    department TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_username
    ON employees(username COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS workstations (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    employee_id INTEGER REFERENCES employees(id),
    is_default  INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_workstations_default
    ON workstations(employee_id) WHERE is_default = 1;

CREATE TABLE IF NOT EXISTS assets (
    id                 INTEGER PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    tag                TEXT NOT NULL,
    serial_number      TEXT NOT NULL DEFAULT '',
    model_id           INTEGER NOT NULL REFERENCES models(id),
    category_id        INTEGER NOT NULL REFERENCES categories(id),
    status             TEXT NOT NULL DEFAULT 'Ready to Deploy'
                       CHECK (status IN ('Ready to Deploy', 'Onsite', 'WFH', 'Temporarily Deployed', 'Borrowed', 'Defective')),
    image_path         TEXT NOT NULL DEFAULT '',
    workstation_id     TEXT REFERENCES workstations(id),
    is_borrowed        INTEGER NOT NULL DEFAULT 0,
    borrow_employee_id INTEGER REFERENCES employees(id),
    borrow_start_date  TEXT,
    borrow_end_date    TEXT,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (is_borrowed = 0 OR (borrow_employee_id IS NOT NULL AND borrow_end_date > borrow_start_date))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_tag
    ON assets(tag COLLATE NOCASE);

CREATE INDEX IF NOT EXISTS idx_assets_workstation
    ON assets(workstation_id);

CREATE TABLE IF NOT EXISTS activity_logs (
    id           INTEGER PRIMARY KEY,
    action       TEXT NOT NULL CHECK (action IN ('create', 'update', 'delete')),
    table_name   TEXT NOT NULL,
    record_id    TEXT NOT NULL,
    performed_by TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// DomainTables lists the tables holding entity data, parents before
// children. Backups restore exactly these tables in this order.
var DomainTables = []string{
	"users",
	"companies",
	"departments",
	"manufacturers",
	"categories",
	"models",
	"employees",
	"workstations",
	"assets",
	"activity_logs",
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
