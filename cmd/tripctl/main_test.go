package main

import (
	"bytes"
	"testing"

	"github.com/Conversly/tripshare/internal/backfill"
	"github.com/Conversly/tripshare/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.ToolConfig {
	return &config.ToolConfig{
		MaxDBConns:  2,
		LogLevel:    "error",
		WorkerCount: 3,
		BatchSize:   50,
		PhotoRoot:   "./photos",
	}
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd(testConfig())

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "version"},
		{"migrate", "pending"},
		{"backfill", "uuids"},
		{"backfill", "photos"},
		{"verify"},
		{"seed"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	photos, _, err := root.Find([]string{"backfill", "photos"})
	require.NoError(t, err)
	assert.Equal(t, "3", photos.Flags().Lookup("workers").DefValue)
	assert.Equal(t, "50", photos.Flags().Lookup("batch").DefValue)
	assert.NotNil(t, photos.Flags().Lookup("move"))
	assert.NotNil(t, photos.Flags().Lookup("dry-run"))
}

func TestCommandsNeedDatabaseURL(t *testing.T) {
	root := newRootCmd(testConfig())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate", "version"})

	err := root.Execute()
	assert.EqualError(t, err, "database url is required: set DATABASE_URL or --database-url")
}

func TestRequiredFlags(t *testing.T) {
	for args, want := range map[string][]string{
		"--legacy-root is required": {"backfill", "photos"},
		"--file is required":        {"seed"},
	} {
		root := newRootCmd(testConfig())
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(want)
		assert.EqualError(t, root.Execute(), args)
	}
}

func TestPrintReports(t *testing.T) {
	var buf bytes.Buffer
	printPending(&buf, nil)
	printPending(&buf, []int{5, 6})
	assert.Equal(t, "schema is up to date\n2 pending: 5, 6\n", buf.String())

	buf.Reset()
	printUUIDReport(&buf, &backfill.UUIDReport{DryRun: true, Counts: []backfill.UUIDCount{
		{Target: "users.uuid", Rows: 2},
		{Target: "trips.user_uuid", Rows: 1},
	}})
	assert.Contains(t, buf.String(), "COLUMN           MISSING\n")
	assert.Contains(t, buf.String(), "users.uuid       2\n")
	assert.Contains(t, buf.String(), "3 row(s) missing\n")

	buf.Reset()
	printPhotoReport(&buf, &backfill.PhotoReport{Scanned: 3, Copied: 1, Failed: 1, Missing: []string{"a.jpg"}}, false)
	assert.Equal(t, "scanned 3, copied 1, already in place 0, missing 1, failed 1\nmissing: a.jpg\n", buf.String())

	buf.Reset()
	id := uuid.New()
	printVerifyReport(&buf, &backfill.VerifyReport{
		SchemaVersion: 2,
		MissingUUIDs:  map[string]int64{"users.uuid": 4, "trips.uuid": 0},
		MissingFiles:  []uuid.UUID{id},
	})
	assert.Contains(t, buf.String(), "missing uuids: users.uuid: 4\n")
	assert.NotContains(t, buf.String(), "trips.uuid")
	assert.Contains(t, buf.String(), "missing file: "+id.String()+"\n")

	buf.Reset()
	printSeedReport(&buf, &backfill.SeedReport{Users: 1, Trips: 2, Skipped: []string{"ana"}})
	assert.Equal(t, "seeded 1 user(s) with 2 trip(s)\nskipped existing: ana\n", buf.String())
}
