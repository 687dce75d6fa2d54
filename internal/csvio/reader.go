package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader decodes records with a Dialect. Blank lines are skipped and records
// may have varying field counts; width checks belong to the caller.
type Reader struct {
	std  *csv.Reader
	scan *scanner
}

// NewReader creates a Reader for d. A leading UTF-8 byte order mark is
// dropped.
func NewReader(r io.Reader, d Dialect) *Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	if d.standard() {
		cr := csv.NewReader(br)
		cr.Comma = d.Delimiter
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		return &Reader{std: cr}
	}
	return &Reader{scan: &scanner{r: br, d: d}}
}

// Read returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Read() ([]string, error) {
	if r.std != nil {
		return r.std.Read()
	}
	return r.scan.record()
}

// scanner reads dialects encoding/csv cannot express: custom quote
// characters, escape characters, disabled quote doubling and QuoteNone.
type scanner struct {
	r *bufio.Reader
	d Dialect
}

type scanState int

const (
	stateStart scanState = iota
	stateField
	stateQuoted
	stateQuoteInQuoted
)

func (s *scanner) record() ([]string, error) {
	for {
		rec, blank, err := s.scanRecord()
		if err != nil {
			return nil, err
		}
		if !blank {
			return rec, nil
		}
	}
}

// scanRecord reads one physical record. blank is true for an empty line.
func (s *scanner) scanRecord() (rec []string, blank bool, err error) {
	var (
		fld     strings.Builder
		state   = stateStart
		started bool
	)
	quoting := s.d.Quoting != QuoteNone && s.d.QuoteChar != 0

	emit := func() {
		rec = append(rec, fld.String())
		fld.Reset()
		state = stateStart
	}

	for {
		c, _, rerr := s.r.ReadRune()
		if rerr == io.EOF {
			if !started {
				return nil, false, io.EOF
			}
			emit()
			return rec, false, nil
		}
		if rerr != nil {
			return nil, false, rerr
		}

		if c == s.d.EscapeChar && s.d.EscapeChar != 0 && state != stateQuoteInQuoted {
			next, _, nerr := s.r.ReadRune()
			if nerr != nil && nerr != io.EOF {
				return nil, false, nerr
			}
			started = true
			if nerr == nil {
				fld.WriteRune(next)
			}
			if state == stateStart {
				state = stateField
			}
			continue
		}

		switch state {
		case stateQuoted:
			started = true
			if c == s.d.QuoteChar {
				state = stateQuoteInQuoted
			} else {
				fld.WriteRune(c)
			}
			continue
		case stateQuoteInQuoted:
			if c == s.d.QuoteChar && s.d.DoubleQuote {
				fld.WriteRune(c)
				state = stateQuoted
				continue
			}
		}

		switch {
		case c == s.d.Delimiter:
			started = true
			emit()
		case c == '\n' || c == '\r':
			if c == '\r' {
				if next, _, perr := s.r.ReadRune(); perr == nil && next != '\n' {
					_ = s.r.UnreadRune()
				}
			}
			if !started {
				return nil, true, nil
			}
			emit()
			return rec, false, nil
		case state == stateStart && quoting && c == s.d.QuoteChar:
			started = true
			state = stateQuoted
		default:
			started = true
			fld.WriteRune(c)
			state = stateField
		}
	}
}
