// Package sqlite provides the default persistent implementation of the
// token, mirror and link stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Every store shares a single database connection:
//
//   - TokenStore: OAuth tokens, one per owner
//   - ContactStore, ProjectStore, InvoiceStore: the local mirror
//   - LinkStore: principal to contact links
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.ledgerbridge/ledgerbridge.db
package sqlite
