// Package entries provides the persistence layer for diary entries.
//
// # Overview
//
// The package defines a Repository interface used by the services, the HTTP
// API and the snapshot codec. SQLiteRepository implements it over a
// storage.Table bound to a dbx.DBTX (either *sql.DB or *sql.Tx).
//
// # Data Model
//
// Each entry is stored whole as a JSON document keyed by id. The date and
// isFavorite fields are mirrored into indexed columns so ranges and the
// favorites filter are answered by SQLite. Saving an existing id replaces
// the stored record; ids are never generated here.
//
// # Errors
//
// Reads that cannot reach the database return common.ErrStorageUnavailable
// and writes return common.ErrWriteFailed. An empty result with a nil error
// always means the collection really is empty.
//
// Typical Usage
//
//	repo := entries.NewSQLiteRepository(engine.DB(), engine.Observer())
//	_ = repo.Save(ctx, e)
//	list, _ := repo.ListAll(ctx)
//	_ = repo.Remove(ctx, e.ID)
package entries
