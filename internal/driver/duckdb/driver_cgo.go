//go:build cgo

package duckdb

import (
	"database/sql"
	"strconv"

	_ "github.com/marcboeker/go-duckdb/v2" // registers "duckdb" with database/sql

	"github.com/johndauphine/sqlcsv/internal/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for DuckDB database files.
type Driver struct{}

// Name returns the primary driver name.
func (d *Driver) Name() string {
	return "duckdb"
}

// Aliases returns alternative names for this driver.
func (d *Driver) Aliases() []string {
	return nil
}

// Defaults returns the default configuration values for DuckDB.
func (d *Driver) Defaults() driver.Defaults {
	return driver.Defaults{Scheme: "duckdb"}
}

// Open returns a handle for duckdb:///path, or an in-memory database for
// duckdb://.
func (d *Driver) Open(locator string) (*sql.DB, error) {
	return sql.Open("duckdb", DSN(locator))
}

// DSN maps a locator to a go-duckdb data source name; the empty string is the
// in-memory database.
func DSN(locator string) string {
	return driver.LocalPath(locator, "")
}

// Placeholder returns "$n".
func (d *Driver) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
