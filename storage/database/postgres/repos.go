// Package pgrepos implements the domain repositories over PostgreSQL using
// sqlx for scanning and squirrel for query building.
package pgrepos

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// psql builds queries with PostgreSQL's $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// trapNoRowsErr maps sql's "no rows" to the given domain sentinel.
func trapNoRowsErr(err, notFound error) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return err
}
