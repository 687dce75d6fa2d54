package command

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StdStream is the path that names stdin or stdout.
const StdStream = "-"

// OpenInput opens path for reading. "-" or "" reads stdin. Paths ending in
// .gz are decompressed.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "" || path == StdStream {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	if !isGzip(path) {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip input %s: %w", path, err)
	}
	return &gzipInput{Reader: zr, file: f}, nil
}

type gzipInput struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipInput) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}

// Output is a destination for CSV data. File outputs are written to a
// temporary file that replaces the target only on Close, so a failed select
// never leaves a truncated file behind.
type Output struct {
	w      io.Writer
	gz     *gzip.Writer
	file   *os.File
	path   string
	closed bool
}

// OpenOutput opens path for writing. "-" or "" writes to stdout. Paths ending
// in .gz are compressed.
func OpenOutput(path string) (*Output, error) {
	if path == "" || path == StdStream {
		return &Output{w: os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	_ = f.Chmod(0o644)

	o := &Output{w: f, file: f, path: path}
	if isGzip(path) {
		o.gz = gzip.NewWriter(f)
		o.w = o.gz
	}
	return o, nil
}

func (o *Output) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Close flushes the output and moves a file output into place.
func (o *Output) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	if o.file == nil {
		return nil
	}

	tmp := o.file.Name()
	if o.gz != nil {
		if err := o.gz.Close(); err != nil {
			o.file.Close()
			os.Remove(tmp)
			return fmt.Errorf("closing gzip output: %w", err)
		}
	}
	if err := o.file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Rename(tmp, o.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}

// Abort discards a file output. It is a no-op after Close.
func (o *Output) Abort() {
	if o.closed {
		return
	}
	o.closed = true
	if o.file != nil {
		o.file.Close()
		os.Remove(o.file.Name())
	}
}

func isGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}
