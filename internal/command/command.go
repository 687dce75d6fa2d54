// Package command drives a database session between CSV streams: select
// writes a query result as CSV, insert executes a parameterized statement for
// every CSV row in order-preserving batches.
package command

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/johndauphine/sqlcsv/internal/apperr"
	"github.com/johndauphine/sqlcsv/internal/casting"
	"github.com/johndauphine/sqlcsv/internal/csvio"
	"github.com/johndauphine/sqlcsv/internal/driver"
	"github.com/johndauphine/sqlcsv/internal/logging"
	"github.com/johndauphine/sqlcsv/internal/progress"
)

// Config holds the session settings. It is fixed for the life of a Command.
type Config struct {
	Locator     string
	PreSQL      string
	PostSQL     string
	Transaction bool
	Header      bool
	Dialect     csvio.Dialect
	DateFormat  string

	// Progress receives a row counter while data moves; nil disables it.
	Progress io.Writer
}

// Result summarises a finished operation.
type Result struct {
	Rows    int64
	Batches int
	Elapsed time.Duration
}

// Command runs select and insert operations against one database.
type Command struct {
	cfg Config
}

// New validates cfg and returns a Command.
func New(cfg Config) (*Command, error) {
	if err := cfg.Dialect.Validate(); err != nil {
		return nil, err
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = casting.DefaultDateFormat
	}
	return &Command{cfg: cfg}, nil
}

// queryer is the part of *sql.Conn and *sql.Tx the session needs.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// session is one open connection, optionally inside a transaction.
type session struct {
	conn *sql.Conn
	tx   *sql.Tx
}

func (s *session) queryer() queryer {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

// atomic runs fn so that its statements take effect together. Inside a
// session transaction fn joins it; otherwise fn gets a transaction of its own
// that is committed before atomic returns.
func (s *session) atomic(ctx context.Context, fn func(queryer) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Engine("begin batch transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return apperr.Engine("commit batch", tx.Commit())
}

// connectExec opens the session, runs the pre-SQL, fn and the post-SQL, and
// closes it again. With Transaction set everything runs in one transaction
// that is committed only if all steps succeed. The connection is always
// released.
func (c *Command) connectExec(ctx context.Context, fn func(context.Context, *session) error) (err error) {
	if c.cfg.Locator == "" {
		return apperr.Config("database locator is required (--db-url or SQLCSV_DB_URL)")
	}
	d, err := driver.ForLocator(c.cfg.Locator)
	if err != nil {
		return err
	}
	db, err := d.Open(c.cfg.Locator)
	if err != nil {
		return apperr.Engine("open database", err)
	}
	defer db.Close()

	logging.Debug("Connecting to %s (%s)", driver.Redact(c.cfg.Locator), d.Name())
	conn, err := db.Conn(ctx)
	if err != nil {
		return apperr.Engine("connect", err)
	}
	defer conn.Close()

	s := &session{conn: conn}
	if c.cfg.Transaction {
		if s.tx, err = conn.BeginTx(ctx, nil); err != nil {
			return apperr.Engine("begin transaction", err)
		}
		defer func() {
			if s.tx == nil {
				return
			}
			r := recover()
			if rbErr := s.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error("Rollback failed: %v", rbErr)
			}
			switch {
			case r != nil:
				logging.Warn("Transaction rolled back after panic: %v", r)
				panic(r)
			case err != nil:
				logging.Warn("Transaction rolled back: %v", err)
			}
		}()
	}

	if err := runScript(ctx, s.queryer(), "pre-SQL", c.cfg.PreSQL); err != nil {
		return err
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	if err := runScript(ctx, s.queryer(), "post-SQL", c.cfg.PostSQL); err != nil {
		return err
	}

	if s.tx != nil {
		if err := s.tx.Commit(); err != nil {
			return apperr.Engine("commit transaction", err)
		}
		s.tx = nil
	}
	return nil
}

// Select runs query once and writes the result to w as CSV: the column names
// first when Header is set, then one record per row in result order.
func (c *Command) Select(ctx context.Context, query string, w io.Writer) (Result, error) {
	var res Result
	tracker := progress.New(c.cfg.Progress, "Selecting")
	tracker.SetTotal(-1)

	err := c.connectExec(ctx, func(ctx context.Context, s *session) error {
		rows, err := s.queryer().QueryContext(ctx, query)
		if err != nil {
			return apperr.Engine("select query failed", err)
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return apperr.Engine("reading result columns", err)
		}

		cw := csvio.NewWriter(w, c.cfg.Dialect)
		if c.cfg.Header {
			if err := cw.Write(columns); err != nil {
				return fmt.Errorf("writing header: %w", err)
			}
		}

		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				return apperr.Engine(fmt.Sprintf("scanning row %d", res.Rows+1), err)
			}
			if err := cw.WriteValues(values, c.cfg.DateFormat); err != nil {
				return fmt.Errorf("writing row %d: %w", res.Rows+1, err)
			}
			res.Rows++
			tracker.Add(1)
		}
		if err := rows.Err(); err != nil {
			return apperr.Engine("reading result rows", err)
		}
		res.Batches = 1
		return cw.Flush()
	})
	if err != nil {
		return res, err
	}
	res.Elapsed = tracker.Finish()
	return res, nil
}

// Insert reads CSV records from r, casts them with the declared column types
// and nullability flags, and executes query once per record. Records are sent
// in batches of chunkSize, or all in one batch when chunkSize is 0. Each batch
// is atomic. Without a session transaction earlier batches stay committed when
// a later one fails.
func (c *Command) Insert(ctx context.Context, query string, r io.Reader, types, nullables string, chunkSize int) (Result, error) {
	var res Result

	caster, err := casting.NewFromSpec(types, nullables, c.cfg.DateFormat)
	if err != nil {
		return res, err
	}
	if chunkSize < 0 {
		return res, apperr.Config("chunk size must be a positive integer, got %d", chunkSize)
	}

	tracker := progress.New(c.cfg.Progress, "Inserting")
	tracker.SetTotal(-1)
	reader := csvio.NewReader(r, c.cfg.Dialect)

	err = c.connectExec(ctx, func(ctx context.Context, s *session) error {
		if c.cfg.Header {
			if _, err := reader.Read(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("reading header: %w", err)
			}
		}

		for {
			chunk, done, err := nextChunk(reader, caster, chunkSize, res.Rows)
			if err != nil {
				return err
			}
			if len(chunk) > 0 {
				batch := res.Batches + 1
				logging.Debug("Executing batch %d (%d rows)", batch, len(chunk))
				err := s.atomic(ctx, func(q queryer) error {
					return executeBatch(ctx, q, query, chunk, res.Rows)
				})
				if err != nil {
					return err
				}
				res.Batches = batch
				res.Rows += int64(len(chunk))
				tracker.Add(int64(len(chunk)))
			}
			if done {
				return nil
			}
		}
	})
	if err != nil {
		return res, err
	}
	res.Elapsed = tracker.Finish()
	logging.Info("Inserted %d rows in %d batches", res.Rows, res.Batches)
	return res, nil
}

// nextChunk reads and casts up to size records; size 0 reads to the end.
// done reports that the input is exhausted. offset is the number of data
// records consumed before this chunk and only feeds error messages.
func nextChunk(reader *csvio.Reader, caster *casting.TypeCaster, size int, offset int64) (chunk [][]any, done bool, err error) {
	for size == 0 || len(chunk) < size {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return chunk, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("reading record %d: %w", offset+int64(len(chunk))+1, err)
		}
		values, err := caster.Cast(record)
		if err != nil {
			return nil, false, fmt.Errorf("record %d: %w", offset+int64(len(chunk))+1, err)
		}
		chunk = append(chunk, values)
	}
	return chunk, false, nil
}

// executeBatch prepares query once and executes it for every row of chunk, in
// order.
func executeBatch(ctx context.Context, q queryer, query string, chunk [][]any, offset int64) error {
	stmt, err := q.PrepareContext(ctx, query)
	if err != nil {
		return apperr.Engine("prepare insert statement", err)
	}
	defer stmt.Close()

	for i, row := range chunk {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return apperr.Engine(fmt.Sprintf("insert record %d", offset+int64(i)+1), err)
		}
	}
	return nil
}
