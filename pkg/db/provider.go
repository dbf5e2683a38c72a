// Package db provides the database connection layer: a plain Postgres
// client and a Supabase-backed one, interchangeable behind Provider.
package db

import "database/sql"

// Provider is implemented by clients that expose a sql.DB handle.
type Provider interface {
	DB() *sql.DB
	Close() error
}
