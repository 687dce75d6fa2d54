package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndauphine/sqlcsv/internal/apperr"
)

func TestRunScript(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []int
	}{
		{"empty", "", nil},
		{"blank", " \n\t ", nil},
		{"single", "INSERT INTO t VALUES (1)", []int{1}},
		{"multiple", "INSERT INTO t VALUES (1);\nINSERT INTO t VALUES (2);", []int{1, 2}},
		{"comment with apostrophe", "-- don't touch\nINSERT INTO t VALUES (1); INSERT INTO t VALUES (2)", []int{1, 2}},
		{"semicolon in string", "INSERT INTO t SELECT length('a;b'); INSERT INTO t VALUES (4)", []int{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, db := testDB(t, "CREATE TABLE t (id INTEGER)")
			require.NoError(t, runScript(context.Background(), db, "pre-SQL", tt.script))
			assert.Equal(t, tt.want, ids(t, db, "t"))
		})
	}
}

func TestRunScript_Trigger(t *testing.T) {
	_, db := testDB(t, "CREATE TABLE t (id INTEGER)", "CREATE TABLE audit (id INTEGER)")

	trigger := "CREATE TRIGGER trg AFTER INSERT ON t BEGIN INSERT INTO audit VALUES (NEW.id); END"
	require.NoError(t, runScript(context.Background(), db, "pre-SQL", trigger))

	_, err := db.Exec("INSERT INTO t VALUES (5)")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids(t, db, "audit"))
}

func TestRunScript_EngineError(t *testing.T) {
	_, db := testDB(t)

	err := runScript(context.Background(), db, "post-SQL", "INSERT INTO missing VALUES (1)")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrEngine)
	assert.True(t, strings.HasPrefix(err.Error(), "[ENGINE] post-SQL failed"), err.Error())
}

func TestInsert_TriggerInPreSQL(t *testing.T) {
	locator, db := testDB(t, "CREATE TABLE t (id INTEGER)", "CREATE TABLE audit (id INTEGER)")

	_, err := newCommand(t, locator, func(c *Config) {
		c.Transaction = true
		c.PreSQL = "CREATE TRIGGER trg AFTER INSERT ON t BEGIN INSERT INTO audit VALUES (NEW.id); END"
	}).Insert(context.Background(), "INSERT INTO t VALUES (?)", strings.NewReader("id\n1\n2\n"), "i", "", 1)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, ids(t, db, "t"))
	assert.Equal(t, []int{1, 2}, ids(t, db, "audit"))
}
