// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the auth gates to distinguish between different failure
// scenarios without depending on the SQL driver in use.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist, is soft-deleted, or
// (for conditional updates) no longer matches the expected state.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// the row's state does not allow, such as removing an event's creator or
// granting CREATOR through the cohost API.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update violates a unique
// constraint (duplicate email, cohost already present). Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate recognises unique-key violations from MySQL (error 1062) and
// from SQLite, which the tests run against.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
