package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhppoted/db-sync-sheets/errs"
)

func setenv(t *testing.T, env map[string]string) {
	t.Helper()

	for _, b := range bindings {
		t.Setenv(b.env, "")
		os.Unsetenv(b.env)
	}

	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setenv(t, map[string]string{
		"DB_SYNC_DATABASE_URL":  "postgres://localhost/app",
		"GOOGLE_SPREADSHEET_ID": "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
	})

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
	assert.Equal(t, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", cfg.SpreadsheetID)
	assert.Equal(t, []string{"public"}, cfg.IncludedSchemas)
	assert.Empty(t, cfg.ExcludedSchemas)
	assert.Empty(t, cfg.ExcludedTablePrefixes)
	assert.Equal(t, "", cfg.SheetPrefix)
	assert.Equal(t, 0, cfg.BatchSize)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, RAW, cfg.ValueInputOption)
	assert.False(t, cfg.AbortOnExhausted)
	assert.Equal(t, "public", cfg.DefaultSchema())
}

func TestLoadFromEnvironment(t *testing.T) {
	setenv(t, map[string]string{
		"DB_SYNC_DATABASE_URL":            "postgres://localhost/app",
		"GOOGLE_SPREADSHEET_ID":           "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0",
		"DB_SYNC_INCLUDED_SCHEMAS":        "sales, public ,",
		"DB_SYNC_EXCLUDED_SCHEMAS":        "internal",
		"DB_SYNC_EXCLUDED_TABLE_PREFIXES": "tmp_,_",
		"DB_SYNC_SHEET_PREFIX":            "db-",
		"DB_SYNC_BATCH_SIZE":              "500",
		"DB_SYNC_LOG_LEVEL":               "debug",
		"DB_SYNC_VALUE_INPUT_OPTION":      "user_entered",
		"DB_SYNC_WRITE_BATCH_ROWS":        "10000",
		"DB_SYNC_ABORT_ON_EXHAUSTED":      "true",
	})

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", cfg.SpreadsheetID)
	assert.Equal(t, []string{"sales", "public"}, cfg.IncludedSchemas)
	assert.Equal(t, []string{"internal"}, cfg.ExcludedSchemas)
	assert.Equal(t, []string{"tmp_", "_"}, cfg.ExcludedTablePrefixes)
	assert.Equal(t, "db-", cfg.SheetPrefix)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, USER_ENTERED, cfg.ValueInputOption)
	assert.Equal(t, 10000, cfg.WriteBatchRows)
	assert.True(t, cfg.AbortOnExhausted)
	assert.Equal(t, "sales", cfg.DefaultSchema())
}

func TestLoadFromFile(t *testing.T) {
	setenv(t, map[string]string{
		"DB_SYNC_SHEET_PREFIX": "env-",
	})

	file := filepath.Join(t.TempDir(), "db-sync.yaml")
	yaml := `
database_url: postgres://db.example.com/app
spreadsheet_id: abc123
included_schemas:
  - public
  - sales
batch_size: 250
sheet_prefix: file-
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0600))

	cfg, err := Load(NewViper(), file)
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.example.com/app", cfg.DatabaseURL)
	assert.Equal(t, "abc123", cfg.SpreadsheetID)
	assert.Equal(t, []string{"public", "sales"}, cfg.IncludedSchemas)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, "env-", cfg.SheetPrefix)
}

func TestLoadWithMissingDatabaseURL(t *testing.T) {
	setenv(t, map[string]string{
		"GOOGLE_SPREADSHEET_ID": "abc123",
	})

	_, err := Load(NewViper(), "")

	require.Error(t, err)
	assert.Equal(t, errs.Config, errs.CategoryOf(err))
	assert.Contains(t, err.Error(), "DB_SYNC_DATABASE_URL")
}

func TestLoadWithMissingSpreadsheet(t *testing.T) {
	setenv(t, map[string]string{
		"DB_SYNC_DATABASE_URL": "postgres://localhost/app",
	})

	_, err := Load(NewViper(), "")

	require.Error(t, err)
	assert.Equal(t, errs.Config, errs.CategoryOf(err))
	assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")
}

func TestLoadWithInvalidBatchSize(t *testing.T) {
	setenv(t, map[string]string{
		"DB_SYNC_DATABASE_URL":  "postgres://localhost/app",
		"GOOGLE_SPREADSHEET_ID": "abc123",
		"DB_SYNC_BATCH_SIZE":    "lots",
	})

	_, err := Load(NewViper(), "")

	require.Error(t, err)
	assert.Equal(t, errs.Config, errs.CategoryOf(err))
}

func TestLoadWithInvalidValueInputOption(t *testing.T) {
	setenv(t, map[string]string{
		"DB_SYNC_DATABASE_URL":       "postgres://localhost/app",
		"GOOGLE_SPREADSHEET_ID":      "abc123",
		"DB_SYNC_VALUE_INPUT_OPTION": "FORMULA",
	})

	_, err := Load(NewViper(), "")

	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	assert.Equal(t, []string{}, ParseCSV(""))
	assert.Equal(t, []string{}, ParseCSV(" , ,"))
	assert.Equal(t, []string{"a", "b c"}, ParseCSV(" a,b c ,"))
}
