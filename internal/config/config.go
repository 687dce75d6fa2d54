// Package config loads sqlcsv settings from an optional YAML file. Command-line
// flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/casting"
	"github.com/johndauphine/sqlcsv/internal/csvio"
	"github.com/johndauphine/sqlcsv/internal/dbconfig"
	"github.com/johndauphine/sqlcsv/internal/logging"
	"github.com/johndauphine/sqlcsv/internal/secrets"
)

// Config is the complete file configuration.
type Config struct {
	Database    dbconfig.Database `yaml:"database"`
	PreSQL      string            `yaml:"pre_sql"`
	PostSQL     string            `yaml:"post_sql"`
	Transaction bool              `yaml:"transaction"`
	Header      bool              `yaml:"header"`
	DateFormat  string            `yaml:"date_format"`
	ChunkSize   int               `yaml:"chunk_size"` // 0 inserts the whole input as one batch
	Dialect     DialectConfig     `yaml:"dialect"`
	Log         LogConfig         `yaml:"log"`
}

// DialectConfig holds CSV dialect settings as written in YAML. Single
// characters are strings so "\t" style escapes can be used.
type DialectConfig struct {
	Delimiter      string `yaml:"delimiter"`
	LineTerminator string `yaml:"lineterminator"`
	Quoting        string `yaml:"quoting"`
	QuoteChar      string `yaml:"quotechar"`
	EscapeChar     string `yaml:"escapechar"`
	DoubleQuote    bool   `yaml:"doublequote"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Header:     true,
		DateFormat: casting.DefaultDateFormat,
		Dialect: DialectConfig{
			Delimiter:      ",",
			LineTerminator: `\n`,
			Quoting:        "MINIMAL",
			QuoteChar:      `"`,
			DoubleQuote:    true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// ${VAR} references are expanded from the environment before decoding.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Config("reading config file: %v", err)
	}
	if err := cfg.decode(expandEnv(data)); err != nil {
		return nil, apperr.Config("parsing config file %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} with the value of VAR. Bare $VAR is left alone so
// passwords containing '$' survive.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		return []byte(os.Getenv(string(envRef.FindSubmatch(m)[1])))
	})
}

// Validate reports invalid settings as configuration errors.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return apperr.Config("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	if _, err := casting.ParseType("datetime", c.DateFormat); err != nil {
		return err
	}
	if _, err := c.CSVDialect(); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := logging.ParseLevel(c.Log.Level); err != nil {
			return apperr.Config("log level: %v", err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return apperr.Config("log format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// CSVDialect converts the dialect settings and validates them.
func (c *Config) CSVDialect() (csvio.Dialect, error) {
	var d csvio.Dialect
	var err error

	if d.Delimiter, err = csvio.ParseChar("delimiter", c.Dialect.Delimiter); err != nil {
		return d, err
	}
	if d.QuoteChar, err = csvio.ParseChar("quotechar", c.Dialect.QuoteChar); err != nil {
		return d, err
	}
	if d.EscapeChar, err = csvio.ParseChar("escapechar", c.Dialect.EscapeChar); err != nil {
		return d, err
	}
	if d.Quoting, err = csvio.ParseQuoting(c.Dialect.Quoting); err != nil {
		return d, err
	}
	d.LineTerminator = csvio.Unescape(c.Dialect.LineTerminator)
	d.DoubleQuote = c.Dialect.DoubleQuote

	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// Locator resolves the database settings to a locator, looking profiles up in
// the secrets file.
func (c *Config) Locator() (string, error) {
	if c.Database.URL == "" && c.Database.Profile != "" {
		return secrets.Resolve(c.Database.Profile)
	}
	return c.Database.Locator()
}
