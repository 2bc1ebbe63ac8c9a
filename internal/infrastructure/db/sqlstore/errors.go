package sqlstore

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/slugboard/slugboard/internal/core/domain"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	slugConstraintMarker = "slug"
)

// classifyUnique maps a driver-level unique violation to ErrSlugTaken or
// ErrUserExists. It returns nil for every other error.
func classifyUnique(err error) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return nil
	}
	if strings.Contains(constraint, slugConstraintMarker) {
		return domain.ErrSlugTaken
	}
	return domain.ErrUserExists
}

// uniqueConstraint reports whether err is a unique violation and names the
// violated constraint or column as the driver describes it.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return pgErr.ConstraintName, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number != mysqlDuplicateEntry {
			return "", false
		}
		// Duplicate entry 'x' for key 'users.users_slug_unique'
		_, key, _ := strings.Cut(myErr.Message, "for key")
		return key, true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		case sqlite3.SQLITE_CONSTRAINT:
			if !strings.Contains(liteErr.Error(), "UNIQUE constraint failed") {
				return "", false
			}
		default:
			return "", false
		}
		// constraint failed: UNIQUE constraint failed: users.slug (2067)
		return liteErr.Error(), true
	}

	return "", false
}
