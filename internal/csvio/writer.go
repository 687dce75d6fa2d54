package csvio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/johndauphine/sqlcsv/internal/casting"
)

// Writer encodes records with a Dialect. Output is buffered; call Flush when
// done.
type Writer struct {
	w       *bufio.Writer
	d       Dialect
	special string
}

// field is one value ready for encoding.
type field struct {
	text    string
	numeric bool
}

// NewWriter creates a Writer for d.
func NewWriter(w io.Writer, d Dialect) *Writer {
	special := string(d.Delimiter) + "\r\n" + d.LineTerminator
	if d.QuoteChar != 0 {
		special += string(d.QuoteChar)
	}
	if d.EscapeChar != 0 {
		special += string(d.EscapeChar)
	}
	return &Writer{w: bufio.NewWriter(w), d: d, special: special}
}

// Write encodes a record of text fields. Text fields are never numeric, so
// QuoteNonNumeric quotes all of them.
func (w *Writer) Write(record []string) error {
	fields := make([]field, len(record))
	for i, s := range record {
		fields[i] = field{text: s}
	}
	return w.writeFields(fields)
}

// WriteValues encodes a record of driver-native values. Numeric values stay
// unquoted under QuoteNonNumeric; time values use the strftime dateFormat.
func (w *Writer) WriteValues(values []any, dateFormat string) error {
	fields := make([]field, len(values))
	for i, v := range values {
		text, numeric := FormatValue(v, dateFormat)
		fields[i] = field{text: text, numeric: numeric}
	}
	return w.writeFields(fields)
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeFields(fields []field) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := w.w.WriteRune(w.d.Delimiter); err != nil {
				return err
			}
		}
		// A lone empty field is quoted so the record is not read back as a
		// blank line.
		quote := w.shouldQuote(f) || (len(fields) == 1 && f.text == "" && w.d.Quoting != QuoteNone)
		if err := w.writeField(f.text, quote); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString(w.d.LineTerminator)
	return err
}

func (w *Writer) shouldQuote(f field) bool {
	switch w.d.Quoting {
	case QuoteAll:
		return true
	case QuoteNonNumeric:
		return !f.numeric
	case QuoteNone:
		return false
	default:
		return strings.ContainsAny(f.text, w.special)
	}
}

func (w *Writer) writeField(text string, quoted bool) error {
	var b strings.Builder
	if quoted {
		b.WriteRune(w.d.QuoteChar)
	}
	for _, r := range text {
		switch {
		case w.d.EscapeChar != 0 && r == w.d.EscapeChar:
			b.WriteRune(w.d.EscapeChar)
			b.WriteRune(r)
		case quoted && r == w.d.QuoteChar:
			if w.d.DoubleQuote {
				b.WriteRune(r)
			} else if w.d.EscapeChar != 0 {
				b.WriteRune(w.d.EscapeChar)
			} else {
				return &EscapeError{Field: text}
			}
			b.WriteRune(r)
		case !quoted && w.needsEscape(r):
			if w.d.EscapeChar == 0 {
				return &EscapeError{Field: text}
			}
			b.WriteRune(w.d.EscapeChar)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	if quoted {
		b.WriteRune(w.d.QuoteChar)
	}
	_, err := w.w.WriteString(b.String())
	return err
}

// needsEscape reports whether r must be escaped in an unquoted field.
func (w *Writer) needsEscape(r rune) bool {
	if r == w.d.Delimiter || r == '\r' || r == '\n' {
		return true
	}
	if w.d.QuoteChar != 0 && r == w.d.QuoteChar {
		return true
	}
	return strings.ContainsRune(w.d.LineTerminator, r)
}

// EscapeError is returned when a field holds a character that must be
// escaped but the dialect has no escape character.
type EscapeError struct {
	Field string
}

func (e *EscapeError) Error() string {
	return "csv: need to escape, but no escapechar set: " + strconv.Quote(e.Field)
}

// FormatValue renders a driver-native value as CSV text and reports whether it
// is numeric. nil renders as the empty string. Floats always carry a decimal
// point or exponent so they read back as floats.
func FormatValue(v any, dateFormat string) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, false
	case []byte:
		return string(x), false
	case bool:
		return strconv.FormatBool(x), false
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return formatFloat(float64(x), 32), true
	case float64:
		return formatFloat(x, 64), true
	case time.Time:
		return casting.FormatTime(x, dateFormat), false
	default:
		return fmt.Sprint(x), false
	}
}

func formatFloat(f float64, bits int) string {
	format := byte('f')
	if abs := math.Abs(f); f != 0 && (abs < 1e-4 || abs >= 1e16) {
		format = 'g'
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
