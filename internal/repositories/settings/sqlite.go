package settings

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/storage"
)

// Collection is the settings table layout. Every record is stored under
// models.SettingsKey.
var Collection = storage.Collection[models.AppSettings]{
	Name:      "settings",
	KeyColumn: "key",
	Key:       func(models.AppSettings) string { return models.SettingsKey },
}

// SQLiteRepository implements Repository on top of a storage.Table.
type SQLiteRepository struct {
	table *storage.Table[models.AppSettings]
	log   logging.Logger
}

// NewSQLiteRepository returns a repository bound to db. log and obs may be nil.
func NewSQLiteRepository(db dbx.DBTX, log logging.Logger, obs storage.Observer) *SQLiteRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLiteRepository{table: storage.NewTable(db, Collection, obs), log: log}
}

func (r *SQLiteRepository) Load(ctx context.Context) models.AppSettings {
	s, err := r.Get(ctx)
	if err != nil {
		r.log.Warn(ctx, "settings unreadable, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return s
}

func (r *SQLiteRepository) Get(ctx context.Context) (models.AppSettings, error) {
	s, ok, err := r.table.Get(ctx, models.SettingsKey)
	if err != nil {
		return models.AppSettings{}, err
	}
	if !ok {
		return models.DefaultSettings(), nil
	}
	return s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s models.AppSettings) error {
	return r.table.Put(ctx, s)
}
