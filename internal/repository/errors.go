// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrEmailExists is returned when a user is created with an email
	// that is already registered.
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreEmailExists is returned when a store email is already used.
	ErrStoreEmailExists = errors.New("store email already used")
	// ErrOwnerNotFound is returned when a store references a missing user.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrStoreNotFound is returned when a rating targets a missing store.
	ErrStoreNotFound = errors.New("store not found")
	// ErrInvalidRating is returned for rating values outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// MySQL server error numbers the repositories translate.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateKey(err error) bool { return mysqlErrNumber(err) == errDupEntry }

func isForeignKeyViolation(err error) bool { return mysqlErrNumber(err) == errNoReferencedRow }

// IsUnavailable reports whether err means the database could not be
// reached in time: a context deadline (pool wait included) or a broken
// connection. Such failures are retriable by the client.
func IsUnavailable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn)
}

// normalizeEmail lower-cases and trims an email so that uniqueness is
// case-insensitive regardless of column collation.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// likeFilter accumulates optional "col LIKE %value%" conditions.
type likeFilter struct {
	conds []string
	args  []interface{}
}

func (f *likeFilter) add(col, value string) {
	v := strings.TrimSpace(value)
	if v == "" {
		return
	}
	f.conds = append(f.conds, col+" LIKE ?")
	f.args = append(f.args, "%"+escapeLike(v)+"%")
}

// clause renders the conditions prefixed by lead ("WHERE" or "AND").
func (f *likeFilter) clause(lead string) string {
	if len(f.conds) == 0 {
		return ""
	}
	return " " + lead + " " + strings.Join(f.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
