// Package sqlite provides the SQLite driver implementation on top of the
// pure-Go modernc.org/sqlite engine.
// It registers itself with the driver registry on import.
package sqlite

import (
	"database/sql"

	_ "modernc.org/sqlite" // registers "sqlite" with database/sql

	"github.com/johndauphine/sqlcsv/internal/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for SQLite database files.
type Driver struct{}

// Name returns the primary driver name.
func (d *Driver) Name() string {
	return "sqlite"
}

// Aliases returns alternative names for this driver.
func (d *Driver) Aliases() []string {
	return []string{"sqlite3", "file"}
}

// Defaults returns the default configuration values for SQLite.
func (d *Driver) Defaults() driver.Defaults {
	return driver.Defaults{Scheme: "sqlite"}
}

// Open returns a handle for the database file named by the locator.
func (d *Driver) Open(locator string) (*sql.DB, error) {
	return sql.Open("sqlite", DSN(locator))
}

// DSN maps a locator to a modernc.org/sqlite data source name. file: URIs are
// passed through; sqlite:// locators follow the usual URL convention where
// sqlite:///rel is a relative path, sqlite:////abs an absolute one and
// sqlite:// the in-memory database.
func DSN(locator string) string {
	if driver.Scheme(locator) == "file" {
		return locator
	}
	return driver.LocalPath(locator, ":memory:")
}

// Placeholder returns "?".
func (d *Driver) Placeholder(int) string {
	return "?"
}
