// Package libsql provides the libSQL (Turso) driver implementation for
// remote libsql:// databases.
// It registers itself with the driver registry on import.
package libsql

import (
	"database/sql"
	"net/url"

	"github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for libSQL servers.
type Driver struct{}

// Name returns the primary driver name.
func (d *Driver) Name() string {
	return "libsql"
}

// Aliases returns alternative names for this driver.
func (d *Driver) Aliases() []string {
	return []string{"turso"}
}

// Defaults returns the default configuration values for libSQL.
func (d *Driver) Defaults() driver.Defaults {
	return driver.Defaults{Port: 443, Scheme: "libsql"}
}

// Open returns a handle for libsql://host?authToken=...&tls=0|1. The token and
// tls parameters are turned into connector options.
func (d *Driver) Open(locator string) (*sql.DB, error) {
	dbURL, opts, err := Options(locator)
	if err != nil {
		return nil, err
	}
	connector, err := libsql.NewConnector(dbURL, opts...)
	if err != nil {
		return nil, apperr.Config("invalid libsql locator: %v", err)
	}
	return sql.OpenDB(connector), nil
}

// Options splits the connector options out of a locator's query string.
func Options(locator string) (string, []libsql.Option, error) {
	u, err := url.Parse(driver.ReplaceScheme(locator, "libsql"))
	if err != nil {
		return "", nil, apperr.Config("invalid libsql locator: %v", err)
	}

	var opts []libsql.Option
	query := u.Query()
	for _, key := range []string{"authToken", "auth_token", "jwt"} {
		if token := query.Get(key); token != "" {
			opts = append(opts, libsql.WithAuthToken(token))
		}
		query.Del(key)
	}
	switch query.Get("tls") {
	case "":
	case "0":
		opts = append(opts, libsql.WithTls(false))
	case "1":
		opts = append(opts, libsql.WithTls(true))
	default:
		return "", nil, apperr.Config("libsql tls must be 0 or 1, got %q", query.Get("tls"))
	}
	query.Del("tls")

	u.RawQuery = query.Encode()
	return u.String(), opts, nil
}

// Placeholder returns "?".
func (d *Driver) Placeholder(int) string {
	return "?"
}
