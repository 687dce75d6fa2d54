// Package driver provides pluggable database driver abstractions.
// Each database (PostgreSQL, MSSQL, MySQL, SQLite, ...) implements the Driver
// interface to turn a database locator into an open *sql.DB.
package driver

import (
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/johndauphine/sqlcsv/internal/apperr"
)

// Defaults contains default values for a database driver.
// Used by dbconfig to fill in structured connection settings.
type Defaults struct {
	// Port is the default port (e.g., 5432 for PostgreSQL, 1433 for MSSQL).
	// Zero for file-based databases.
	Port int

	// Scheme is the locator scheme produced for structured settings.
	Scheme string
}

// Driver represents a pluggable database driver.
//
// To add a new database:
// 1. Create a package under internal/driver/<dbname>/
// 2. Implement the Driver interface
// 3. Register via init(): driver.Register(&MyDriver{})
type Driver interface {
	// Name returns the primary driver name (e.g., "mssql", "postgres", "mysql").
	Name() string

	// Aliases returns alternative names for this driver. Names and aliases
	// double as locator schemes.
	Aliases() []string

	// Defaults returns the default connection values for this driver.
	Defaults() Defaults

	// Open returns a handle for the database the locator designates. It does
	// not connect; the first connection is made lazily by database/sql.
	Open(locator string) (*sql.DB, error)

	// Placeholder returns the bind parameter marker for the n-th (1-based)
	// parameter of a statement.
	Placeholder(n int) string
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Driver)
	primary  = make(map[string]Driver)
)

// Register makes a driver available under its name and aliases.
// It panics if a name is registered twice, like database/sql.Register.
func Register(d Driver) {
	mu.Lock()
	defer mu.Unlock()

	names := append([]string{d.Name()}, d.Aliases()...)
	for _, name := range names {
		key := strings.ToLower(name)
		if _, dup := registry[key]; dup {
			panic("driver: Register called twice for " + key)
		}
		registry[key] = d
	}
	primary[d.Name()] = d
}

// Get returns the driver registered under name or one of its aliases.
func Get(name string) (Driver, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperr.Config("unknown database driver %q (available: %s)", name, strings.Join(available(), ", "))
	}
	return d, nil
}

// Available returns the primary names of all registered drivers, sorted.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	return available()
}

func available() []string {
	names := make([]string, 0, len(primary))
	for name := range primary {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForLocator resolves the driver for a locator from its scheme, e.g.
// "postgres://host/db" or "sqlite:///data.db".
func ForLocator(locator string) (Driver, error) {
	scheme := Scheme(locator)
	if scheme == "" {
		return nil, apperr.Config("database locator %q has no scheme", Redact(locator))
	}
	return Get(scheme)
}

// Scheme returns the lowercased scheme of a locator, or "" when it has none.
func Scheme(locator string) string {
	scheme, _, ok := strings.Cut(strings.TrimSpace(locator), ":")
	if !ok || scheme == "" || strings.ContainsAny(scheme, "/@ ") {
		return ""
	}
	return strings.ToLower(scheme)
}

// ReplaceScheme swaps the scheme of a locator for another one.
func ReplaceScheme(locator, scheme string) string {
	_, rest, ok := strings.Cut(locator, ":")
	if !ok {
		return locator
	}
	return scheme + ":" + rest
}

// LocalPath maps a file-database locator to a filesystem path:
// "scheme://" is the in-memory database, "scheme:///rel" a relative path and
// "scheme:////abs" an absolute one. Query strings are kept.
func LocalPath(locator, memory string) string {
	_, rest, ok := strings.Cut(locator, "://")
	if !ok {
		_, rest, _ = strings.Cut(locator, ":")
	}
	path, query, hasQuery := strings.Cut(rest, "?")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		path = memory
	}
	if hasQuery {
		return path + "?" + query
	}
	return path
}

// Redact hides the password of a URL-shaped locator for logging.
func Redact(locator string) string {
	scheme, rest, ok := strings.Cut(locator, "://")
	if !ok {
		return locator
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return locator
	}
	userinfo := rest[:at]
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return locator
	}
	return scheme + "://" + user + ":xxxxx" + rest[at:]
}
