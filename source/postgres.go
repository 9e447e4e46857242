package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/uhppoted/db-sync-sheets/errs"
)

// Queryer is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DB is a Queryer that can start transactions (for paged reads).
type DB interface {
	Queryer
	BeginTx(ctx context.Context, options pgx.TxOptions) (pgx.Tx, error)
}

// Postgres discovers and reads tables from a PostgreSQL database.
type Postgres struct {
	db       DB
	pageSize int
	log      *zap.Logger
}

const cursor = "db_sync_cursor"

// Connect opens a single-connection pool. The pool replaces a broken
// connection on the next acquire, which is what makes connection errors worth
// retrying.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errs.Wrap(err, errs.Config, "invalid database URL")
	}

	cfg.MaxConns = 1
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errs.Classify(err, "connect to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.Classify(err, "connect to database")
	}

	return pool, nil
}

// NewPostgres returns a source that reads tables through db. A page size of 0
// reads each table with a single query.
func NewPostgres(db DB, pageSize int, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Postgres{
		db:       db,
		pageSize: pageSize,
		log:      logger,
	}
}

// Discover lists the base tables in the database and returns those selected by
// the rules, ordered by schema and table name.
func (p *Postgres) Discover(ctx context.Context, rules Rules) ([]TableRef, error) {
	query := []string{
		"SELECT table_schema, table_name, table_type",
		"FROM information_schema.tables",
		"WHERE table_type = 'BASE TABLE'",
	}
	args := []any{}

	if included := nonEmpty(rules.IncludedSchemas); len(included) > 0 {
		args = append(args, included)
		query = append(query, fmt.Sprintf("AND table_schema = ANY($%d)", len(args)))
	}

	if excluded := nonEmpty(rules.ExcludedSchemas); len(excluded) > 0 {
		args = append(args, excluded)
		query = append(query, fmt.Sprintf("AND NOT (table_schema = ANY($%d))", len(args)))
	}

	query = append(query, "ORDER BY table_schema, table_name")

	rows, err := p.db.Query(ctx, strings.Join(query, "\n"), args...)
	if err != nil {
		return nil, errs.Classify(err, "discover tables")
	}

	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Candidate, error) {
		var c Candidate
		err := row.Scan(&c.Schema, &c.Name, &c.Type)
		return c, err
	})
	if err != nil {
		return nil, errs.Classify(err, "discover tables")
	}

	tables := Filter(candidates, rules)

	p.log.Debug("discovered tables",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(tables)))

	return tables, nil
}

// Fetch reads the entire contents of a table as columns plus normalized rows.
// Column order is the result-set order of SELECT *; no ORDER BY is imposed.
func (p *Postgres) Fetch(ctx context.Context, ref TableRef) (*Table, error) {
	op := fmt.Sprintf("fetch %v", ref)
	query := "SELECT * FROM " + pgx.Identifier{ref.Schema, ref.Name}.Sanitize()

	if p.pageSize <= 0 {
		rows, err := p.db.Query(ctx, query)
		if err != nil {
			return nil, errs.Classify(err, op)
		}

		columns, data, err := collect(rows)
		if err != nil {
			return nil, errs.Classify(err, op)
		}

		return &Table{Ref: ref, Columns: columns, Rows: data}, nil
	}

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, errs.Classify(err, op)
	}

	defer tx.Rollback(ctx)

	columns, data, err := fetchPaged(ctx, tx, query, p.pageSize, p.log)
	if err != nil {
		return nil, errs.Classify(err, op)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Classify(err, op)
	}

	return &Table{Ref: ref, Columns: columns, Rows: data}, nil
}

// fetchPaged reads the query results through a server side cursor, pageSize
// rows at a time. Must be called inside a transaction.
func fetchPaged(ctx context.Context, q Queryer, query string, pageSize int, log *zap.Logger) ([]string, [][]any, error) {
	name := pgx.Identifier{cursor}.Sanitize()

	if _, err := q.Exec(ctx, fmt.Sprintf("DECLARE %s NO SCROLL CURSOR FOR %s", name, query)); err != nil {
		return nil, nil, err
	}

	fetch := fmt.Sprintf("FETCH FORWARD %d FROM %s", pageSize, name)
	columns := []string(nil)
	data := [][]any{}

	for page := 1; ; page++ {
		rows, err := q.Query(ctx, fetch)
		if err != nil {
			return nil, nil, err
		}

		cols, records, err := collect(rows)
		if err != nil {
			return nil, nil, err
		}

		if columns == nil {
			columns = cols
		}

		data = append(data, records...)

		log.Debug("fetched page", zap.Int("page", page), zap.Int("rows", len(records)))

		if len(records) < pageSize {
			break
		}
	}

	if _, err := q.Exec(ctx, "CLOSE "+name); err != nil {
		return nil, nil, err
	}

	return columns, data, nil
}

func collect(rows pgx.Rows) ([]string, [][]any, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	data := [][]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}

		dates(fields, values)

		data = append(data, NormalizeValues(values, len(columns)))
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, data, nil
}

// dates retags the values of date columns so that they render as dates. pgx
// decodes date and timestamp columns to the same time.Time.
func dates(fields []pgconn.FieldDescription, values []any) {
	for i, f := range fields {
		if i >= len(values) || f.DataTypeOID != pgtype.DateOID {
			continue
		}

		if t, ok := values[i].(time.Time); ok {
			values[i] = pgtype.Date{Time: t, Valid: true}
		}
	}
}

func nonEmpty(list []string) []string {
	l := []string{}
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			l = append(l, v)
		}
	}

	return l
}
