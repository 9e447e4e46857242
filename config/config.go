// Package config loads the sync configuration from the environment, an optional
// .env file and an optional YAML configuration file.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/uhppoted/db-sync-sheets/errs"
)

const DEFAULT_SCHEMA = "public"

const (
	RAW          = "RAW"
	USER_ENTERED = "USER_ENTERED"
)

// Config is read once at startup and is immutable for the duration of a run.
type Config struct {
	DatabaseURL           string
	SpreadsheetID         string
	IncludedSchemas       []string
	ExcludedSchemas       []string
	ExcludedTablePrefixes []string
	SheetPrefix           string
	BatchSize             int
	LogLevel              string
	LogFormat             string
	ValueInputOption      string
	WriteBatchRows        int
	AbortOnExhausted      bool
	CredentialsFile       string
	CredentialsBase64     string

	// Tables restricts a run to the listed 'schema.table' names (case-insensitive).
	Tables []string
}

var bindings = []struct {
	key string
	env string
}{
	{"database_url", "DB_SYNC_DATABASE_URL"},
	{"spreadsheet_id", "GOOGLE_SPREADSHEET_ID"},
	{"included_schemas", "DB_SYNC_INCLUDED_SCHEMAS"},
	{"excluded_schemas", "DB_SYNC_EXCLUDED_SCHEMAS"},
	{"excluded_table_prefixes", "DB_SYNC_EXCLUDED_TABLE_PREFIXES"},
	{"sheet_prefix", "DB_SYNC_SHEET_PREFIX"},
	{"batch_size", "DB_SYNC_BATCH_SIZE"},
	{"log_level", "DB_SYNC_LOG_LEVEL"},
	{"log_format", "DB_SYNC_LOG_FORMAT"},
	{"value_input_option", "DB_SYNC_VALUE_INPUT_OPTION"},
	{"write_batch_rows", "DB_SYNC_WRITE_BATCH_ROWS"},
	{"abort_on_exhausted", "DB_SYNC_ABORT_ON_EXHAUSTED"},
	{"credentials_file", "GOOGLE_APPLICATION_CREDENTIALS"},
	{"credentials_base64", "GOOGLE_CREDENTIALS_BASE64"},
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// NewViper returns a viper instance bound to the configuration environment
// variables, with defaults set.
func NewViper() *viper.Viper {
	v := viper.New()

	for _, b := range bindings {
		v.BindEnv(b.key, b.env)
	}

	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "console")
	v.SetDefault("value_input_option", RAW)
	v.SetDefault("abort_on_exhausted", false)

	return v
}

// LoadDotEnv loads environment variables from the listed .env files, or from
// .env in the working directory if none are listed. Missing files are ignored
// and existing environment variables are never overridden.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}

	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the configuration from v, merging in the YAML file if one is
// given. Environment variables take precedence over the file.
func Load(v *viper.Viper, file string) (*Config, error) {
	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrap(err, errs.Config, fmt.Sprintf("read configuration file %v", file))
		}
	}

	batchSize, err := toInt(v.Get("batch_size"))
	if err != nil {
		return nil, errs.Wrap(err, errs.Config, "invalid DB_SYNC_BATCH_SIZE")
	}

	writeBatchRows, err := toInt(v.Get("write_batch_rows"))
	if err != nil {
		return nil, errs.Wrap(err, errs.Config, "invalid DB_SYNC_WRITE_BATCH_ROWS")
	}

	cfg := Config{
		DatabaseURL:           strings.TrimSpace(v.GetString("database_url")),
		SpreadsheetID:         spreadsheetID(v.GetString("spreadsheet_id")),
		IncludedSchemas:       toList(v.Get("included_schemas")),
		ExcludedSchemas:       toList(v.Get("excluded_schemas")),
		ExcludedTablePrefixes: toList(v.Get("excluded_table_prefixes")),
		SheetPrefix:           v.GetString("sheet_prefix"),
		BatchSize:             batchSize,
		LogLevel:              strings.ToUpper(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:             strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		ValueInputOption:      strings.ToUpper(strings.TrimSpace(v.GetString("value_input_option"))),
		WriteBatchRows:        writeBatchRows,
		AbortOnExhausted:      v.GetBool("abort_on_exhausted"),
		CredentialsFile:       strings.TrimSpace(v.GetString("credentials_file")),
		CredentialsBase64:     strings.TrimSpace(v.GetString("credentials_base64")),
	}

	if len(cfg.IncludedSchemas) == 0 {
		cfg.IncludedSchemas = []string{DEFAULT_SCHEMA}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the required settings and value ranges.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errs.New(errs.Config, "DB_SYNC_DATABASE_URL must be set")
	}

	if c.SpreadsheetID == "" {
		return errs.New(errs.Config, "GOOGLE_SPREADSHEET_ID must be set")
	}

	if c.BatchSize < 0 {
		return errs.New(errs.Config, fmt.Sprintf("invalid DB_SYNC_BATCH_SIZE (%v)", c.BatchSize))
	}

	if c.WriteBatchRows < 0 {
		return errs.New(errs.Config, fmt.Sprintf("invalid DB_SYNC_WRITE_BATCH_ROWS (%v)", c.WriteBatchRows))
	}

	switch c.ValueInputOption {
	case RAW, USER_ENTERED:
	default:
		return errs.New(errs.Config, fmt.Sprintf("invalid DB_SYNC_VALUE_INPUT_OPTION '%v' - expected RAW or USER_ENTERED", c.ValueInputOption))
	}

	return nil
}

// DefaultSchema returns the primary included schema, i.e. the schema whose
// tables are synced to worksheets without a schema qualifier.
func (c Config) DefaultSchema() string {
	if len(c.IncludedSchemas) > 0 {
		return c.IncludedSchemas[0]
	}

	return DEFAULT_SCHEMA
}

// ParseCSV splits a comma separated list, trimming whitespace and discarding
// empty items.
func ParseCSV(s string) []string {
	list := []string{}
	for _, item := range strings.Split(s, ",") {
		if v := strings.TrimSpace(item); v != "" {
			list = append(list, v)
		}
	}

	return list
}

func toList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}

	case string:
		return ParseCSV(t)

	default:
		list := []string{}
		for _, item := range cast.ToStringSlice(t) {
			if s := strings.TrimSpace(item); s != "" {
				list = append(list, s)
			}
		}
		return list
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil

	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(t))

	default:
		return cast.ToIntE(t)
	}
}

// spreadsheetID accepts either a bare spreadsheet ID or a spreadsheet URL.
func spreadsheetID(s string) string {
	s = strings.TrimSpace(s)
	if match := spreadsheetURL.FindStringSubmatch(s); len(match) > 1 {
		return match[1]
	}

	return s
}
