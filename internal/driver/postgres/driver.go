// Package postgres provides the PostgreSQL driver implementation.
// It registers itself with the driver registry on import.
package postgres

import (
	"database/sql"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for PostgreSQL databases.
type Driver struct{}

// Name returns the primary driver name.
func (d *Driver) Name() string {
	return "postgres"
}

// Aliases returns alternative names for this driver.
func (d *Driver) Aliases() []string {
	return []string{"postgresql", "pg"}
}

// Defaults returns the default configuration values for PostgreSQL.
func (d *Driver) Defaults() driver.Defaults {
	return driver.Defaults{Port: 5432, Scheme: "postgres"}
}

// Open parses a postgres:// URL or key=value connection string and returns a
// pgx-backed handle.
func (d *Driver) Open(locator string) (*sql.DB, error) {
	if driver.Scheme(locator) == "pg" {
		locator = driver.ReplaceScheme(locator, "postgres")
	}
	cfg, err := pgx.ParseConfig(locator)
	if err != nil {
		return nil, apperr.Config("invalid postgres locator: %v", err)
	}
	return stdlib.OpenDB(*cfg), nil
}

// Placeholder returns "$n".
func (d *Driver) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
