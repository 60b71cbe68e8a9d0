// Package storage is the durable table layer underneath the entry and
// settings stores.
//
// # Overview
//
// An Engine owns the local SQLite database (modernc.org/sqlite): it is opened
// once per process, configured for a single writer, and upgraded with the
// embedded goose migrations in migrations/. Each schema version is applied
// exactly once; re-running the upgrade against a current schema is a no-op.
//
// A Collection declares a named keyed collection with optional secondary
// indexes; a Table binds it to a dbx.DBTX (*sql.DB or *sql.Tx) and offers
// Get, GetAll, ByIndex, Put (insert-or-replace), Delete and Count. Records
// are stored as JSON documents next to their key and index columns.
//
// # Errors
//
// Engine-level read failures wrap common.ErrStorageUnavailable; failed writes
// wrap common.ErrWriteFailed. A missing record is not an error.
//
// # Transactions
//
// Each Table call is one statement, hence one transaction. To make several
// writes atomic, run them through Table.WithTx inside dbx.WithTx.
package storage
