package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/incidentlens/internal/config"
	"github.com/runnerr0/incidentlens/internal/logging"
	"github.com/runnerr0/incidentlens/internal/storage"
)

// sampleCSV holds three incidents: two THEFT on STREET (2021 and 2022, one
// arrest) and one BATTERY in an ALLEY (2021, no coordinates).
const sampleCSV = `ID,Case Number,Date,Block,Primary Type,Description,Location Description,Arrest,Domestic,Beat,District,Year,Latitude,Longitude
1001,JA100,03/01/2021 11:30:00 PM,001XX N STATE ST,THEFT,OVER $500,STREET,false,false,0111,001,2021,41.88,-87.63
1002,JA101,06/15/2022 08:05:00 AM,002XX W MADISON ST,THEFT,RETAIL THEFT,STREET,true,false,0122,001,2022,41.95,-87.70
1003,JA102,09/30/2021 12:00:00 PM,003XX S WELLS ST,BATTERY,SIMPLE,ALLEY,false,true,0133,001,2021,,
`

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestApp returns an app backed by a migrated in-memory database and the
// default config.
func newTestApp(t *testing.T) *app {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Each pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &app{
		cfg:    config.DefaultConfig(),
		log:    logging.Discard(),
		store:  store,
		db:     db,
		dbPath: ":memory:",
	}
}

// writeCSV writes content to a temp file and returns its path.
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidents.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seededApp returns a test app with sampleCSV imported.
func seededApp(t *testing.T) *app {
	t.Helper()
	a := newTestApp(t)
	cmd := &ImportCommand{CSV: writeCSV(t, sampleCSV), globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a, nil))
	})
	return a
}
