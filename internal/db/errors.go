package db

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidTableName is returned for table names that are not plain SQL identifiers.
var ErrInvalidTableName = errors.New("db: invalid table name")

// Op constants name the failing operation for error context.
const (
	OpPing      = "PING"
	OpMigrate   = "MIGRATE"
	OpInsert    = "INSERT"
	OpSelect    = "SELECT"
	OpDelete    = "DELETE"
	OpReplace   = "REPLACE"
	OpBegin     = "BEGIN"
	OpCommit    = "COMMIT"
	OpDecodeRow = "DECODE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// DefaultTable is the mapping table name used by the SQL drivers.
const DefaultTable = "docsync_entity_doc"

var tableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidateTableName rejects names that cannot be interpolated into SQL safely.
func ValidateTableName(name string) error {
	if !tableNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}
