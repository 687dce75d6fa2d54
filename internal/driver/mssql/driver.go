// Package mssql provides the Microsoft SQL Server driver implementation.
// It registers itself with the driver registry on import.
package mssql

import (
	"database/sql"
	"strconv"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for Microsoft SQL Server.
type Driver struct{}

// Name returns the primary driver name.
func (d *Driver) Name() string {
	return "mssql"
}

// Aliases returns alternative names for the driver.
func (d *Driver) Aliases() []string {
	return []string{"sqlserver", "sql-server"}
}

// Defaults returns the default configuration values for MSSQL.
func (d *Driver) Defaults() driver.Defaults {
	return driver.Defaults{Port: 1433, Scheme: "sqlserver"}
}

// Open normalises the scheme to sqlserver:// and returns a handle backed by
// go-mssqldb.
func (d *Driver) Open(locator string) (*sql.DB, error) {
	connector, err := mssqldb.NewConnector(DSN(locator))
	if err != nil {
		return nil, apperr.Config("invalid sqlserver locator: %v", err)
	}
	return sql.OpenDB(connector), nil
}

// DSN rewrites mssql:// and sql-server:// locators to the sqlserver:// URL
// form go-mssqldb understands.
func DSN(locator string) string {
	if driver.Scheme(locator) != "sqlserver" {
		return driver.ReplaceScheme(locator, "sqlserver")
	}
	return locator
}

// Placeholder returns "@pN".
func (d *Driver) Placeholder(n int) string {
	return "@p" + strconv.Itoa(n)
}
