package command

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputReplacesTargetOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "data.csv")

	out, err := OpenOutput(path)
	require.NoError(t, err)
	_, err = io.WriteString(out, "a,b\n1,2\n")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "target must not exist before Close")

	require.NoError(t, out.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain")
}

func TestOutputAbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o644))

	out, err := OpenOutput(path)
	require.NoError(t, err)
	_, err = io.WriteString(out, "partial")
	require.NoError(t, err)
	out.Abort()
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data), "abort keeps the existing file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv.gz")

	out, err := OpenOutput(path)
	require.NoError(t, err)
	_, err = io.WriteString(out, "id\n1\n")
	require.NoError(t, err)
	require.NoError(t, out.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = gzip.NewReader(f)
	require.NoError(t, err, "output should be gzip compressed")

	in, err := OpenInput(path)
	require.NoError(t, err)
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	require.NoError(t, in.Close())
	assert.Equal(t, "id\n1\n", string(data))
}

func TestOpenInputErrors(t *testing.T) {
	_, err := OpenInput(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	plain := filepath.Join(t.TempDir(), "plain.gz")
	require.NoError(t, os.WriteFile(plain, []byte("not gzip"), 0o644))
	_, err = OpenInput(plain)
	assert.Error(t, err)
}

func TestStdStreams(t *testing.T) {
	in, err := OpenInput(StdStream)
	require.NoError(t, err)
	assert.NoError(t, in.Close())

	out, err := OpenOutput("")
	require.NoError(t, err)
	assert.NoError(t, out.Close())
}
