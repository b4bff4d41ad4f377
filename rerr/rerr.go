// Package rerr defines the error kinds ridgedb surfaces to callers, per the
// taxonomy spec.md §7 requires: TableNotFound, TableExists, InvalidSchema,
// TypeMismatch, RowTooLarge, CorruptData, IoFailure. The B+ tree and LRU
// cache are memory-only and never return an error of their own.
//
// Built on cockroachdb/errors rather than bare fmt.Errorf(%w): ridgedb
// already pulls it in indirectly through cockroachdb/pebble, and pebble's
// own sentinel-error idiom (pebble.ErrNotFound) is the model this package
// follows for TableNotFound and friends.
package rerr

import (
	"github.com/cockroachdb/errors"

	"ridgedb/keykind"
)

// Sentinels for conditions with no per-occurrence detail.
var (
	ErrTableExists = errors.New("rerr: table already exists")
	ErrRowTooLarge = errors.New("rerr: row exceeds page capacity even on a fresh page")
	ErrPageFull    = errors.New("rerr: page has insufficient free space for append")
)

// TableNotFoundError reports a table name absent from the catalog.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return "rerr: table not found: " + e.Table
}

func TableNotFound(table string) error {
	return errors.WithStack(&TableNotFoundError{Table: table})
}

// InvalidSchemaError reports a schema that failed catalog validation.
type InvalidSchemaError struct {
	Reason string
}

func (e *InvalidSchemaError) Error() string { return "rerr: invalid schema: " + e.Reason }

func InvalidSchema(reason string) error {
	return errors.WithStack(&InvalidSchemaError{Reason: reason})
}

func InvalidSchemaf(format string, args ...any) error {
	return errors.WithStack(&InvalidSchemaError{Reason: errors.Newf(format, args...).Error()})
}

// TypeMismatchError reports a row value whose kind does not match its
// column's declared kind.
type TypeMismatchError struct {
	ColumnIndex int
	Expected    keykind.Kind
	Got         keykind.Kind
}

func (e *TypeMismatchError) Error() string {
	return errors.Newf("rerr: column %d: expected %s, got %s", e.ColumnIndex, e.Expected, e.Got).Error()
}

func TypeMismatch(columnIndex int, expected, got keykind.Kind) error {
	return errors.WithStack(&TypeMismatchError{ColumnIndex: columnIndex, Expected: expected, Got: got})
}

// CorruptDataError reports an on-disk structure that failed decoding:
// a length prefix that overruns the buffer, an unknown type tag, or a
// truncated file.
type CorruptDataError struct {
	Reason string
}

func (e *CorruptDataError) Error() string { return "rerr: corrupt data: " + e.Reason }

func CorruptData(reason string) error {
	return errors.WithStack(&CorruptDataError{Reason: reason})
}

func CorruptDataf(format string, args ...any) error {
	return errors.WithStack(&CorruptDataError{Reason: errors.Newf(format, args...).Error()})
}

// ErrIoFailure marks every error IoFailure returns, so callers can detect
// the IoFailure kind with errors.Is while the underlying cause stays
// reachable through the wrap chain.
var ErrIoFailure = errors.New("rerr: io failure")

// IoFailure wraps an underlying file-operation error. A nil cause yields
// nil.
func IoFailure(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(cause, "rerr: io failure: %s", context), ErrIoFailure)
}
