// Package settings persists the single AppSettings record.
package settings

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/models"
)

// Repository loads and saves the settings singleton.
type Repository interface {
	// Load returns the stored settings, or models.DefaultSettings when none
	// are stored or the read fails. It never writes.
	Load(ctx context.Context) models.AppSettings

	// Get is Load without the recovery: engine failures are returned as
	// common.ErrStorageUnavailable. A missing record still yields defaults.
	Get(ctx context.Context) (models.AppSettings, error)

	// Save replaces the stored settings wholesale.
	Save(ctx context.Context, s models.AppSettings) error
}
