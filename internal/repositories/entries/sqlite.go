package entries

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/storage"
)

const (
	colDate     = "date"
	colFavorite = "is_favorite"
)

// Collection is the entries table layout; the schema itself is created by
// the storage migrations.
var Collection = storage.Collection[models.Entry]{
	Name:      "entries",
	KeyColumn: "id",
	Key:       func(e models.Entry) string { return e.ID },
	Indexes: []storage.Index[models.Entry]{
		{Column: colDate, Value: func(e models.Entry) any { return e.Date }},
		{Column: colFavorite, Value: func(e models.Entry) any { return e.IsFavorite }},
	},
}

// SQLiteRepository implements Repository on top of a storage.Table.
type SQLiteRepository struct {
	table *storage.Table[models.Entry]
}

// NewSQLiteRepository returns a repository bound to db. obs may be nil.
func NewSQLiteRepository(db dbx.DBTX, obs storage.Observer) *SQLiteRepository {
	return &SQLiteRepository{table: storage.NewTable(db, Collection, obs)}
}

func (r *SQLiteRepository) WithTx(tx dbx.DBTX) Repository {
	return &SQLiteRepository{table: r.table.WithTx(tx)}
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Entry, error) {
	all, err := r.table.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(all)
	return all, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (models.Entry, error) {
	e, ok, err := r.table.Get(ctx, id)
	if err != nil {
		return models.Entry{}, err
	}
	if !ok {
		return models.Entry{}, fmt.Errorf("%w: entry %s", common.ErrNotFound, id)
	}
	return e, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, e models.Entry) error {
	return r.table.Put(ctx, e)
}

func (r *SQLiteRepository) SaveAll(ctx context.Context, es []models.Entry) error {
	return r.table.PutAll(ctx, es)
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

func (r *SQLiteRepository) ListFavorites(ctx context.Context) ([]models.Entry, error) {
	favs, err := r.table.ByIndex(ctx, colFavorite, storage.Only(true))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(favs)
	return favs, nil
}

func (r *SQLiteRepository) ListBetween(ctx context.Context, from, to int64) ([]models.Entry, error) {
	es, err := r.table.ByIndex(ctx, colDate, storage.Between(from, to))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(es)
	return es, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	return r.table.Count(ctx)
}

// sortNewestFirst orders by date descending, keeping read order for ties.
func sortNewestFirst(es []models.Entry) {
	slices.SortStableFunc(es, func(a, b models.Entry) int {
		return cmp.Compare(b.Date, a.Date)
	})
}
