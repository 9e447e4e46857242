package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/uhppoted/db-sync-sheets/config"
	"github.com/uhppoted/db-sync-sheets/errs"
	"github.com/uhppoted/db-sync-sheets/logging"
	"github.com/uhppoted/db-sync-sheets/pipeline"
	"github.com/uhppoted/db-sync-sheets/sheets"
	"github.com/uhppoted/db-sync-sheets/source"
	"github.com/uhppoted/db-sync-sheets/tsv"
)

var SyncCmd = Sync{
	env:    DEFAULT_ENV,
	once:   false,
	tables: []string{},
	dryRun: "",
}

// Sync copies every in-scope PostgreSQL table to its own worksheet in the
// configured Google Sheets spreadsheet.
type Sync struct {
	env    string
	once   bool
	tables []string
	dryRun string
	flags  *pflag.FlagSet
}

func (cmd *Sync) Name() string {
	return "sync"
}

func (cmd *Sync) Description() string {
	return "Replaces the worksheets of a Google Sheets spreadsheet with the contents of PostgreSQL tables"
}

func (cmd *Sync) Usage() string {
	return "[--once] [--tables schema.table,...] [--dry-run <dir>] [schema.table ...]"
}

func (cmd *Sync) Flags(flagset *pflag.FlagSet) {
	cmd.flags = flagset

	flagset.BoolVar(&cmd.once, "once", cmd.once, "Runs a single sync (the default, retained for compatibility with schedulers)")
	flagset.StringSliceVar(&cmd.tables, "tables", cmd.tables, "Restricts the sync to the listed tables e.g. public.users,sales.invoices")
	flagset.StringVar(&cmd.dryRun, "dry-run", cmd.dryRun, "Writes each table to <dir>/<worksheet>.tsv instead of the spreadsheet")
	flagset.StringVar(&cmd.env, "env", cmd.env, "Optional .env file (loaded after ./.env, never overrides the environment)")
}

// Execute loads the configuration, sets up logging, the database pool and the
// destination and then runs a single sync. Tables that exhaust their retries
// are logged and do not fail the run.
func (cmd *Sync) Execute(ctx context.Context, options *Options, args ...string) error {
	config.LoadDotEnv()
	config.LoadDotEnv(cmd.env)

	cfg, err := config.Load(config.NewViper(), configFile(options.Config))
	if err != nil {
		return err
	}

	explicit := len(args) > 0 || (cmd.flags != nil && cmd.flags.Changed("tables"))
	if cfg.Tables, err = selected(cmd.tables, args, explicit, cfg.DefaultSchema()); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Debug:  options.Debug,
	})
	if err != nil {
		return err
	}

	defer logger.Sync()

	setLogger(logger)

	if cmd.once {
		infof("one-off sync requested")
	}

	if len(cfg.Tables) > 0 {
		debugf("sync restricted to %v", strings.Join(cfg.Tables, ", "))
	}

	destination, err := cmd.destination(ctx, cfg, logger)
	if err != nil {
		logger.Error("unable to initialise destination", zap.Error(err))
		return err
	}

	pool, err := source.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to connect to database", zap.Error(err))
		return err
	}

	defer pool.Close()

	db := source.NewPostgres(pool, cfg.BatchSize, logger.Named("source"))
	summary, err := pipeline.New(db, destination, cfg, logger.Named("pipeline")).Run(ctx)
	if err != nil {
		return err
	}

	if len(summary.Exhausted) > 0 {
		warnf("%d table(s) could not be synced: %v", len(summary.Exhausted), summary.Exhausted)
	}

	return nil
}

func (cmd *Sync) destination(ctx context.Context, cfg *config.Config, logger *zap.Logger) (pipeline.Destination, error) {
	if cmd.dryRun != "" {
		infof("dry run - writing TSV files to %v", cmd.dryRun)

		return tsv.NewDestination(cmd.dryRun, cfg, logger.Named("tsv")), nil
	}

	file := cfg.CredentialsFile
	if file == "" && cfg.CredentialsBase64 == "" {
		file = DEFAULT_CREDENTIALS
	}

	credentials, err := authorize(ctx, file, cfg.CredentialsBase64)
	if err != nil {
		return nil, err
	}

	google, err := gsheets.NewService(ctx, option.WithCredentials(credentials))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	debugf("spreadsheet ID:%v  value input:%v", cfg.SpreadsheetID, cfg.ValueInputOption)

	destination := sheets.NewDestination(google, cfg, logger.Named("sheets"))
	if err := destination.Check(ctx); err != nil {
		return nil, err
	}

	return destination, nil
}

// configFile returns the explicit configuration file, or the default file if it
// exists, or "" (environment only).
func configFile(file string) string {
	if strings.TrimSpace(file) != "" {
		return file
	}

	if _, err := os.Stat(DEFAULT_CONFIG); err == nil {
		return DEFAULT_CONFIG
	} else if !errors.Is(err, fs.ErrNotExist) {
		warnf("unable to access default configuration %v (%v)", DEFAULT_CONFIG, err)
	}

	return ""
}

// selected merges the --tables list and the positional arguments, splitting
// comma separated entries and qualifying bare table names with the default
// schema. An explicit selection that names no tables is an error.
func selected(tables []string, args []string, explicit bool, schema string) ([]string, error) {
	list := []string{}
	for _, s := range append(append([]string{}, tables...), args...) {
		for _, t := range config.ParseCSV(s) {
			ref, err := source.ParseTableRef(t, schema)
			if err != nil {
				return nil, errs.Wrap(err, errs.Config, "invalid table selection")
			}

			list = append(list, ref.String())
		}
	}

	if explicit && len(list) == 0 {
		return nil, errs.New(errs.Config, "empty table selection")
	}

	return list, nil
}
