package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: `+filepath.Join(dir, "db", "test.db")+`
redis:
  address: localhost:6379
  status_ttl_seconds: 30
sync:
  interval_seconds: 60
stations:
  - id: 1
    name: PC-01
    specs: RTX 4070
    rate_per_hour: 120
  - id: 2
    name: PS5-01
    rate_per_hour: 150
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 30*time.Second, cfg.StatusCacheTTL())
	assert.Equal(t, time.Minute, cfg.SyncInterval())
	require.Len(t, cfg.Stations, 2)
	assert.Equal(t, "PC-01", cfg.Stations[0].Name)
	assert.Equal(t, 120.0, cfg.Stations[0].RatePerHour)

	// The database directory is created on load.
	_, err = os.Stat(filepath.Join(dir, "db"))
	assert.NoError(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  path: `+filepath.Join(dir, "test.db")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Bookings", cfg.Sheets.SheetName)
	assert.Equal(t, 15*time.Second, cfg.SyncInterval())
	assert.Equal(t, 10*time.Second, cfg.StatusCacheTTL())
	assert.Empty(t, cfg.Stations)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_SPREADSHEET_ID", "sheet-abc")
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  path: `+filepath.Join(dir, "test.db")+`
sheets:
  spreadsheet_id: ${TEST_SPREADSHEET_ID}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sheet-abc", cfg.Sheets.SpreadsheetID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateStations(t *testing.T) {
	dir := t.TempDir()
	dbLine := "database:\n  path: " + filepath.Join(dir, "test.db") + "\n"

	tests := []struct {
		name     string
		stations string
		wantErr  string
	}{
		{
			"NonPositiveID",
			"stations:\n  - id: 0\n    name: PC-01\n",
			"id must be positive",
		},
		{
			"MissingName",
			"stations:\n  - id: 1\n",
			"name is required",
		},
		{
			"NegativeRate",
			"stations:\n  - id: 1\n    name: PC-01\n    rate_per_hour: -5\n",
			"must not be negative",
		},
		{
			"DuplicateID",
			"stations:\n  - id: 1\n    name: PC-01\n  - id: 1\n    name: PC-02\n",
			"duplicate station id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dbLine+tt.stations)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
