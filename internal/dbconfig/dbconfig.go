// Package dbconfig holds database connection settings and turns them into a
// locator URL. Settings come either as a ready locator or as structured
// fields resolved against the driver registry.
package dbconfig

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/driver"
)

// Database holds database connection settings.
type Database struct {
	URL             string            `yaml:"url"`     // full locator; wins over the fields below
	Profile         string            `yaml:"profile"` // named locator from the secrets file
	Type            string            `yaml:"type"`    // driver name or alias: postgres, mssql, mysql, sqlite, ...
	Host            string            `yaml:"host"`
	Port            int               `yaml:"port"`
	Database        string            `yaml:"database"` // database name, or file path for sqlite/duckdb
	User            string            `yaml:"user"`
	Password        string            `yaml:"password"`
	SSLMode         string            `yaml:"ssl_mode"`          // PostgreSQL: disable, require, verify-ca, verify-full
	TrustServerCert bool              `yaml:"trust_server_cert"` // MSSQL: trust server certificate (default: false)
	Encrypt         *bool             `yaml:"encrypt"`           // MSSQL: enable TLS encryption
	Params          map[string]string `yaml:"params"`            // extra query parameters passed to the driver
}

// IsZero reports whether no connection settings are present.
func (c *Database) IsZero() bool {
	return c.URL == "" && c.Profile == "" && c.Type == ""
}

// DSNOptions returns the query parameters for the locator, keyed by the name
// the driver expects.
func (c *Database) DSNOptions(driverName string) map[string]string {
	opts := make(map[string]string, len(c.Params)+3)
	switch driverName {
	case "postgres":
		if c.SSLMode != "" {
			opts["sslmode"] = c.SSLMode
		}
	case "mssql":
		if c.Database != "" {
			opts["database"] = c.Database
		}
		if c.Encrypt != nil {
			opts["encrypt"] = strconv.FormatBool(*c.Encrypt)
		}
		if c.TrustServerCert {
			opts["TrustServerCertificate"] = "true"
		}
	}
	for k, v := range c.Params {
		opts[k] = v
	}
	return opts
}

// Locator returns the database locator. URL is returned as is. Otherwise the
// structured fields are resolved through the driver named by Type; an empty
// result means nothing was configured. Profiles are resolved by the caller.
func (c *Database) Locator() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Type == "" {
		if c.Host != "" || c.Database != "" {
			return "", apperr.Config("database type is required when host or database is set")
		}
		return "", nil
	}

	d, err := driver.Get(c.Type)
	if err != nil {
		return "", err
	}
	defaults := d.Defaults()
	opts := c.DSNOptions(d.Name())

	// File databases have no host; the database field is the path.
	if defaults.Port == 0 {
		if c.Database == "" {
			return defaults.Scheme + "://" + encodeQuery(opts), nil
		}
		return defaults.Scheme + ":///" + c.Database + encodeQuery(opts), nil
	}

	if c.Host == "" {
		return "", apperr.Config("database host is required for %s", d.Name())
	}
	port := c.Port
	if port == 0 {
		port = defaults.Port
	}

	var b strings.Builder
	b.WriteString(defaults.Scheme)
	b.WriteString("://")
	if c.User != "" {
		if c.Password != "" {
			b.WriteString(url.UserPassword(c.User, c.Password).String())
		} else {
			b.WriteString(url.User(c.User).String())
		}
		b.WriteByte('@')
	}
	b.WriteString(net.JoinHostPort(c.Host, strconv.Itoa(port)))
	// MSSQL carries the database as a query parameter.
	if c.Database != "" && d.Name() != "mssql" {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(c.Database))
	}
	b.WriteString(encodeQuery(opts))
	return b.String(), nil
}

// encodeQuery renders opts as "?k=v&..." in key order, or "" when empty.
func encodeQuery(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", url.QueryEscape(k), url.QueryEscape(opts[k]))
	}
	return "?" + strings.Join(parts, "&")
}
