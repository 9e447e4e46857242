// Package pipeline syncs each in-scope database table to its destination
// worksheet, retrying transient failures and isolating retry-exhausted tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uhppoted/db-sync-sheets/config"
	"github.com/uhppoted/db-sync-sheets/source"
)

// Source lists and reads the tables to be synced.
type Source interface {
	Discover(ctx context.Context, rules source.Rules) ([]source.TableRef, error)
	Fetch(ctx context.Context, ref source.TableRef) (*source.Table, error)
}

// Destination stores a table. Resolve prepares an empty target for the table
// and returns its title, Write then stores the header and rows in it.
type Destination interface {
	Resolve(ctx context.Context, table *source.Table) (string, error)
	Write(ctx context.Context, title string, columns []string, rows [][]any) error
}

type Pipeline struct {
	source           Source
	destination      Destination
	rules            source.Rules
	policy           Policy
	abortOnExhausted bool
	log              *zap.Logger
}

// Summary is the outcome of a run.
type Summary struct {
	Synced    []source.TableRef
	Exhausted []source.TableRef
	Rows      int
}

func New(src Source, dst Destination, cfg *config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		source:      src,
		destination: dst,
		rules: source.Rules{
			IncludedSchemas:       cfg.IncludedSchemas,
			ExcludedSchemas:       cfg.ExcludedSchemas,
			ExcludedTablePrefixes: cfg.ExcludedTablePrefixes,
			Tables:                cfg.Tables,
		},
		policy:           DefaultPolicy(),
		abortOnExhausted: cfg.AbortOnExhausted,
		log:              logger,
	}
}

// WithPolicy replaces the default retry policy.
func (p *Pipeline) WithPolicy(policy Policy) *Pipeline {
	p.policy = policy
	return p
}

// SyncTable replaces the destination worksheet for one table with the table's
// current contents and returns the number of data rows written. The fetch,
// resolve and write sequence is retried as a whole.
func (p *Pipeline) SyncTable(ctx context.Context, ref source.TableRef) (int, error) {
	log := p.log.With(zap.String("table", ref.String()))
	rows := 0

	policy := p.policy
	policy.Notify = func(attempt int, err error, wait time.Duration) {
		log.Warn("sync attempt failed",
			zap.Int("attempt", attempt),
			zap.Duration("retry-in", wait),
			zap.Error(err))
	}

	err := Retry(ctx, policy, func() error {
		table, err := p.source.Fetch(ctx, ref)
		if err != nil {
			return err
		}

		title, err := p.destination.Resolve(ctx, table)
		if err != nil {
			return err
		}

		if err := p.destination.Write(ctx, title, table.Columns, table.Rows); err != nil {
			return err
		}

		rows = len(table.Rows)
		log.Debug("wrote worksheet", zap.String("worksheet", title), zap.Int("columns", len(table.Columns)), zap.Int("rows", rows))

		return nil
	})

	if err != nil {
		return 0, err
	}

	return rows, nil
}

// Run syncs every in-scope table in order. A table that exhausts its retries is
// logged and skipped (unless abort-on-exhausted is set); any other failure
// aborts the run and is returned along with the summary so far.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := Summary{
		Synced:    []source.TableRef{},
		Exhausted: []source.TableRef{},
	}

	tables, err := p.source.Discover(ctx, p.rules)
	if err != nil {
		p.log.Error("sync interrupted", zap.Error(err))
		return &summary, fmt.Errorf("error discovering tables (%w)", err)
	}

	p.log.Info("discovered tables", zap.Int("tables", len(tables)))

	for _, ref := range tables {
		log := p.log.With(zap.String("table", ref.String()))
		log.Info("syncing table")

		rows, err := p.SyncTable(ctx, ref)
		switch {
		case err == nil:
			summary.Synced = append(summary.Synced, ref)
			summary.Rows += rows
			log.Info("synced table", zap.Int("rows", rows))

		case errors.Is(err, ErrRetryExhausted) && !p.abortOnExhausted:
			summary.Exhausted = append(summary.Exhausted, ref)
			log.Error("sync failed after retries", zap.Error(err))

		default:
			if errors.Is(err, ErrRetryExhausted) {
				summary.Exhausted = append(summary.Exhausted, ref)
			}

			log.Error("error syncing table", zap.Error(err))
			p.log.Error("sync interrupted", zap.Error(err))

			return &summary, fmt.Errorf("error syncing %v (%w)", ref, err)
		}
	}

	p.log.Info("sync complete",
		zap.Int("synced", len(summary.Synced)),
		zap.Int("exhausted", len(summary.Exhausted)),
		zap.Int("rows", summary.Rows))

	return &summary, nil
}
