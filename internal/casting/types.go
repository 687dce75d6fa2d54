package casting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/johndauphine/sqlcsv/internal/apperr"
)

// DefaultDateFormat is the strftime pattern applied to DateTime columns when
// the caller does not supply one.
const DefaultDateFormat = "%Y-%m-%d %H:%M:%S"

// Kind is the conversion target of a column.
type Kind int

const (
	Integer Kind = iota
	Float
	String
	DateTime
)

// String returns the canonical tag for the kind.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "int"
	case Float:
		return "float"
	case String:
		return "str"
	case DateTime:
		return "datetime"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// typeTags maps every accepted lower-case type token to its kind.
var typeTags = map[string]Kind{
	"i":        Integer,
	"int":      Integer,
	"f":        Float,
	"float":    Float,
	"s":        String,
	"str":      String,
	"d":        DateTime,
	"datetime": DateTime,
}

// nullableFlags maps every accepted lower-case nullability token to its value.
var nullableFlags = map[string]bool{
	"t":     true,
	"true":  true,
	"1":     true,
	"f":     false,
	"false": false,
	"0":     false,
}

// ColumnType is one entry of a column type specification. Format is only
// meaningful for DateTime columns.
type ColumnType struct {
	Kind   Kind
	Format string
}

func (c ColumnType) String() string {
	if c.Kind == DateTime {
		return fmt.Sprintf("datetime(%s)", c.Format)
	}
	return c.Kind.String()
}

// Convert parses raw text into the column's Go value: int64, float64, string
// or time.Time.
func (c ColumnType) Convert(raw string) (any, error) {
	switch c.Kind {
	case Integer:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case Float:
		return parseDecimalFloat(strings.TrimSpace(raw))
	case String:
		return raw, nil
	case DateTime:
		return strftime.Parse(c.Format, raw)
	default:
		return nil, fmt.Errorf("unsupported column kind %v", c.Kind)
	}
}

// parseDecimalFloat is strconv.ParseFloat limited to decimal and scientific
// notation. Hexadecimal mantissas such as 0x1p-2 are rejected.
func parseDecimalFloat(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(s, 64)
}

// ParseType resolves a single type tag. dateFormat is attached to DateTime
// columns and validated here so a bad pattern fails before any row is read.
func ParseType(tag, dateFormat string) (ColumnType, error) {
	kind, ok := typeTags[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return ColumnType{}, apperr.Config("unknown column type %q (use i|int, f|float, s|str, d|datetime)", tag)
	}
	if kind != DateTime {
		return ColumnType{Kind: kind}, nil
	}
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	if _, err := strftime.Layout(dateFormat); err != nil {
		return ColumnType{}, apperr.Config("invalid date format %q: %v", dateFormat, err)
	}
	return ColumnType{Kind: DateTime, Format: dateFormat}, nil
}

// ParseTypes resolves a comma-separated list of type tags.
func ParseTypes(spec, dateFormat string) ([]ColumnType, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, apperr.Config("column types are required")
	}
	tags := strings.Split(spec, ",")
	types := make([]ColumnType, len(tags))
	for i, tag := range tags {
		ct, err := ParseType(tag, dateFormat)
		if err != nil {
			return nil, err
		}
		types[i] = ct
	}
	return types, nil
}

// ParseNullable resolves a single nullability flag.
func ParseNullable(flag string) (bool, error) {
	v, ok := nullableFlags[strings.ToLower(strings.TrimSpace(flag))]
	if !ok {
		return false, apperr.Config("unknown nullable flag %q (use t|true|1 or f|false|0)", flag)
	}
	return v, nil
}

// ParseNullables resolves a comma-separated list of nullability flags.
// An empty spec yields nil, which the caster treats as all non-nullable.
func ParseNullables(spec string) ([]bool, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	flags := strings.Split(spec, ",")
	nullables := make([]bool, len(flags))
	for i, flag := range flags {
		v, err := ParseNullable(flag)
		if err != nil {
			return nil, err
		}
		nullables[i] = v
	}
	return nullables, nil
}

// FormatTime renders t with a strftime pattern, falling back to the default.
func FormatTime(t time.Time, dateFormat string) string {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return strftime.Format(dateFormat, t)
}
