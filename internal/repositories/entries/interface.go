package entries

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/models"
)

// Repository describes storage operations for diary entries.
type Repository interface {
	// ListAll returns every entry, newest date first.
	ListAll(ctx context.Context) ([]models.Entry, error)

	// Get returns the entry with the given id or common.ErrNotFound.
	Get(ctx context.Context, id string) (models.Entry, error)

	// Save inserts e or replaces the stored entry with the same id.
	Save(ctx context.Context, e models.Entry) error

	// SaveAll saves every entry in order. It is atomic only when the
	// repository is bound to a transaction.
	SaveAll(ctx context.Context, es []models.Entry) error

	// Remove deletes the entry with the given id. Missing ids are ignored.
	Remove(ctx context.Context, id string) error

	ListFavorites(ctx context.Context) ([]models.Entry, error)

	// ListBetween returns entries dated in [from, to), newest first.
	ListBetween(ctx context.Context, from, to int64) ([]models.Entry, error)

	Count(ctx context.Context) (int, error)

	// WithTx returns a repository bound to tx.
	WithTx(tx dbx.DBTX) Repository
}
