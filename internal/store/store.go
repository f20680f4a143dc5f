/**
 * @description
 * Shared pieces of the data access layer: sentinel errors that the app and
 * api layers branch on, and the helper that maps Postgres unique-constraint
 * violations onto ErrDuplicate.
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrZoneNotFound           = errors.New("zone not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrPaymentSessionNotFound = errors.New("payment session not found")
	ErrDuplicate              = errors.New("record already exists")
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
