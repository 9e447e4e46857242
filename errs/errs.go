// Package errs defines the closed set of failure categories used to decide
// whether a table sync is retried, skipped or aborts the run.
package errs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Category classifies a failure.
type Category int

const (
	Unclassified Category = iota
	Config
	SpreadsheetAPI
	Database
	Connection
)

func (c Category) String() string {
	switch c {
	case Config:
		return "config"
	case SpreadsheetAPI:
		return "spreadsheet-api"
	case Database:
		return "database"
	case Connection:
		return "connection"
	default:
		return "unclassified"
	}
}

// Transient returns true for the categories that are worth retrying.
func (c Category) Transient() bool {
	switch c {
	case SpreadsheetAPI, Database, Connection:
		return true
	default:
		return false
	}
}

// Error is a failure tagged with its category and the operation that failed.
type Error struct {
	Category Category
	Op       string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", e.Category, e.Op)
	}

	return fmt.Sprintf("%v: %v (%v)", e.Category, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error with an explicit category and no underlying cause.
func New(category Category, op string) error {
	return &Error{Category: category, Op: op}
}

// Wrap tags err with an explicit category. A nil err returns nil.
func Wrap(err error, category Category, op string) error {
	if err == nil {
		return nil
	}

	return &Error{Category: category, Op: op, Err: err}
}

// Classify tags err with the category derived from its concrete type. Errors
// that already carry a category keep it.
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{Category: e.Category, Op: op, Err: err}
	}

	return &Error{Category: categorise(err), Op: op, Err: err}
}

// CategoryOf returns the category of the outermost categorised error in the
// chain, or Unclassified if there is none.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}

	return Unclassified
}

// IsTransient is shorthand for CategoryOf(err).Transient().
func IsTransient(err error) bool {
	return CategoryOf(err).Transient()
}

func categorise(err error) Category {
	var apiErr *googleapi.Error
	var tokenErr *oauth2.RetrieveError
	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError
	var netErr net.Error

	switch {
	case errors.As(err, &apiErr), errors.As(err, &tokenErr):
		return SpreadsheetAPI

	case errors.As(err, &pgErr):
		if len(pgErr.Code) >= 2 {
			switch pgErr.Code[:2] {
			case "08", "40", "53", "57":
				return Database
			}
		}
		return Unclassified

	case errors.As(err, &connectErr):
		return Connection

	case errors.Is(err, context.Canceled):
		return Unclassified

	case pgconn.Timeout(err), pgconn.SafeToRetry(err):
		return Connection

	case errors.As(err, &netErr):
		return Connection

	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return Connection

	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.EPIPE):
		return Connection
	}

	return Unclassified
}
