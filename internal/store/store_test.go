package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// column is one row of PRAGMA table_info.
type column struct {
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	PK      int
}

func tableInfo(t *testing.T, db *sql.DB, table string) map[string]column {
	t.Helper()
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]column{}
	for rows.Next() {
		var (
			cid     int
			c       column
			notNull int
		)
		require.NoError(t, rows.Scan(&cid, &c.Name, &c.Type, &notNull, &c.Default, &c.PK))
		c.NotNull = notNull == 1
		out[c.Name] = c
	}
	require.NoError(t, rows.Err())
	return out
}

func pragma(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	var v string
	require.NoError(t, db.QueryRow("PRAGMA "+name).Scan(&v))
	return v
}

func TestOpen_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()
	invs := createTestInvocations(t)

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteRun(ctx, "sms", createTestResult("run-1", invs), invs))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	id, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)
	assert.Equal(t, "1", pragma(t, s.db, "user_version"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "runs.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestOpen_WALAndForeignKeys(t *testing.T) {
	s := createTestStore(t)
	assert.Equal(t, "wal", pragma(t, s.db, "journal_mode"))
	assert.Equal(t, "1", pragma(t, s.db, "foreign_keys"))
}

func TestSchema_ReportTables(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		table string
		pk    []string
		cols  []string
	}{
		{"runs", []string{"id"}, []string{"suite", "pass", "passed", "failed"}},
		{"invocations", []string{"run_id", "id"}, []string{"ord", "scenario", "idx", "title", "params"}},
		{"events", []string{"run_id", "seq"}, []string{"type", "title", "error"}},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			info := tableInfo(t, s.db, tt.table)
			assert.Len(t, info, len(tt.pk)+len(tt.cols))
			for i, name := range tt.pk {
				require.Contains(t, info, name)
				assert.Equal(t, i+1, info[name].PK, "primary key position of %s", name)
			}
			for _, name := range tt.cols {
				require.Contains(t, info, name)
				assert.True(t, info[name].NotNull, "%s.%s should be NOT NULL", tt.table, name)
			}
		})
	}
}

func TestSchema_EventErrorDefaultsEmpty(t *testing.T) {
	s := createTestStore(t)
	_, err := s.db.Exec(`INSERT INTO runs (id, suite, pass, passed, failed) VALUES ('r', 'sms', 1, 1, 0)`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO events (run_id, seq, type, title) VALUES ('r', 1, 'passed', 't')`)
	require.NoError(t, err)

	events, err := s.QueryEvents(context.Background(), "r", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Error)
}

func TestSchema_RowsRequireRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO events (run_id, seq, type, title) VALUES ('missing', 1, 'passed', 't')`)
	assert.Error(t, err, "event without run")

	_, err = s.db.Exec(`INSERT INTO invocations (run_id, id, ord, scenario, idx, title, params)
		VALUES ('missing', 'i', 0, 's', 0, 't', '{}')`)
	assert.Error(t, err, "invocation without run")
}

func TestMigrations_FromUnversioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`DROP INDEX idx_events_type`)
	require.NoError(t, err)
	_, err = s.db.Exec(`PRAGMA user_version = 0`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'events' AND name = 'idx_events_type'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "1", pragma(t, s.db, "user_version"))
}
