// Package csvio reads and writes CSV records according to a configurable
// dialect: delimiter, record terminator, quoting mode, quote and escape
// characters, and quote doubling.
package csvio

import (
	"fmt"
	"strings"

	"github.com/johndauphine/sqlcsv/internal/apperr"
)

// Quoting controls which output fields are wrapped in quote characters.
type Quoting int

const (
	// QuoteMinimal quotes only fields containing special characters.
	QuoteMinimal Quoting = iota
	// QuoteAll quotes every field.
	QuoteAll
	// QuoteNonNumeric quotes every field that is not a number.
	QuoteNonNumeric
	// QuoteNone never quotes; special characters are escaped instead.
	QuoteNone
)

func (q Quoting) String() string {
	switch q {
	case QuoteMinimal:
		return "MINIMAL"
	case QuoteAll:
		return "ALL"
	case QuoteNonNumeric:
		return "NONNUMERIC"
	case QuoteNone:
		return "NONE"
	default:
		return fmt.Sprintf("Quoting(%d)", int(q))
	}
}

// ParseQuoting resolves a quoting mode name, case-insensitively.
func ParseQuoting(s string) (Quoting, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "MINIMAL":
		return QuoteMinimal, nil
	case "ALL":
		return QuoteAll, nil
	case "NONNUMERIC":
		return QuoteNonNumeric, nil
	case "NONE":
		return QuoteNone, nil
	default:
		return QuoteMinimal, apperr.Config("unknown quoting mode %q (use ALL, MINIMAL, NONNUMERIC, NONE)", s)
	}
}

// Dialect describes how records are encoded. A zero EscapeChar means no
// escape character; a zero QuoteChar is only valid with QuoteNone.
type Dialect struct {
	Delimiter      rune
	LineTerminator string
	Quoting        Quoting
	QuoteChar      rune
	EscapeChar     rune
	DoubleQuote    bool
}

// DefaultDialect returns the comma-separated dialect with minimal quoting and
// quote doubling enabled.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter:      ',',
		LineTerminator: "\n",
		Quoting:        QuoteMinimal,
		QuoteChar:      '"',
		DoubleQuote:    true,
	}
}

// Validate reports contradictory dialect settings as configuration errors.
func (d Dialect) Validate() error {
	switch {
	case d.Delimiter == 0:
		return apperr.Config("delimiter is required")
	case d.Delimiter == '\r' || d.Delimiter == '\n':
		return apperr.Config("delimiter cannot be a line break")
	case d.LineTerminator == "":
		return apperr.Config("line terminator is required")
	case d.QuoteChar == 0 && d.Quoting != QuoteNone:
		return apperr.Config("quotechar is required unless quoting is NONE")
	case d.QuoteChar != 0 && d.QuoteChar == d.Delimiter:
		return apperr.Config("quotechar and delimiter must differ")
	case d.EscapeChar != 0 && (d.EscapeChar == d.Delimiter || d.EscapeChar == d.QuoteChar):
		return apperr.Config("escapechar must differ from delimiter and quotechar")
	}
	return nil
}

// standard reports whether encoding/csv can read this dialect as is.
func (d Dialect) standard() bool {
	return d.QuoteChar == '"' && d.EscapeChar == 0 && d.DoubleQuote && d.Quoting != QuoteNone
}

// ParseChar converts a single-character flag value to a rune. The empty string
// yields 0. The escapes \t, \n and \r are accepted.
func ParseChar(name, s string) (rune, error) {
	s = Unescape(s)
	if s == "" {
		return 0, nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, apperr.Config("%s must be a single character, got %q", name, s)
	}
	return r[0], nil
}

// Unescape expands the backslash escapes commonly typed on a command line.
func Unescape(s string) string {
	return strings.NewReplacer(`\t`, "\t", `\n`, "\n", `\r`, "\r").Replace(s)
}
