// Package duckdb provides the DuckDB driver implementation. DuckDB is linked
// through cgo, so the driver only registers itself in cgo-enabled builds.
package duckdb
