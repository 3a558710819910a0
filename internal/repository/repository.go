package repository

import (
	"context"
	"database/sql"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
// Queries are written with '?' placeholders and passed through Rebind for the active driver.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
	DriverName() string
}

// paginate appends a page clause in the dialect of db's driver.
func paginate(db DBTX, query string, limit, offset int) (string, []interface{}) {
	if db.DriverName() == "oracle" {
		return query + ` OFFSET ? ROWS FETCH NEXT ? ROWS ONLY`, []interface{}{offset, limit}
	}
	return query + ` LIMIT ? OFFSET ?`, []interface{}{limit, offset}
}
