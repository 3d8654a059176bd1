package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). Upserts absorb most of these; any that escape
// map to a 409.
func IsUniqueViolation(err error) bool {
	return code(err) == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a Postgres FK violation
// (SQLSTATE 23503), i.e. a reference to a row that does not exist.
func IsForeignKeyViolation(err error) bool {
	return code(err) == foreignKeyViolation
}

func code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
