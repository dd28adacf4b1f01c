// Package migrations contains the dialect-aware Go migrations for the admin
// tables. Auto-increment keys, date types and the scs sessions table all
// differ by database, so none of them is a single portable SQL file.
package migrations

import "strconv"

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// autoIncrementPK returns the column definition for an integer surrogate key.
func autoIncrementPK() string {
	switch dialect {
	case "postgres":
		return "id SERIAL PRIMARY KEY"
	case "mysql":
		return "id INTEGER PRIMARY KEY AUTO_INCREMENT"
	default: // sqlite3
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// dateTimeType returns the column type for timestamps without a time zone.
func dateTimeType() string {
	switch dialect {
	case "postgres":
		return "TIMESTAMP"
	default:
		return "DATETIME"
	}
}

// varchar returns a bounded text type. MySQL cannot index unbounded TEXT.
func varchar(n int) string {
	if dialect == "mysql" {
		return "VARCHAR(" + strconv.Itoa(n) + ")"
	}
	return "TEXT"
}
