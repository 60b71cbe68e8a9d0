package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/repositories/settings"
)

// SettingsPatch lists the fields to change; nil fields are left as stored.
type SettingsPatch struct {
	Theme             *models.Theme    `json:"theme,omitempty"`
	SecurityEnabled   *bool            `json:"securityEnabled,omitempty"`
	BiometricsEnabled *bool            `json:"biometricsEnabled,omitempty"`
	DailyReminder     *bool            `json:"dailyReminder,omitempty"`
	ReminderTime      *string          `json:"reminderTime,omitempty"`
	ViewMode          *models.ViewMode `json:"viewMode,omitempty"`
}

type SettingsService interface {
	Load(ctx context.Context) models.AppSettings
	Update(ctx context.Context, p SettingsPatch) (models.AppSettings, error)
	// Replace validates s and stores it wholesale.
	Replace(ctx context.Context, s models.AppSettings) (models.AppSettings, error)
	SetPIN(ctx context.Context, pin string) error
	ClearPIN(ctx context.Context) error
	// Locked reports whether entry access requires Unlock. Unreadable
	// settings count as locked.
	Locked(ctx context.Context) bool
	// Unlock returns common.ErrLocked unless pin matches the stored PIN, or
	// the storage error when the settings cannot be read.
	Unlock(ctx context.Context, pin string) error
}

type settingsService struct {
	repo settings.Repository
	opts options
}

func NewSettingsService(repo settings.Repository, opts ...Option) SettingsService {
	return &settingsService{repo: repo, opts: buildOptions(opts)}
}

func (s *settingsService) Load(ctx context.Context) models.AppSettings {
	return s.repo.Load(ctx)
}

// Update merges p into the stored record. A failed read aborts the update so
// defaults never overwrite a record that exists but could not be read.
func (s *settingsService) Update(ctx context.Context, p SettingsPatch) (models.AppSettings, error) {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("load settings: %w", err)
	}
	if p.Theme != nil {
		cur.Theme = *p.Theme
	}
	if p.SecurityEnabled != nil {
		cur.SecurityEnabled = *p.SecurityEnabled
	}
	if p.BiometricsEnabled != nil {
		cur.BiometricsEnabled = *p.BiometricsEnabled
	}
	if p.DailyReminder != nil {
		cur.DailyReminder = *p.DailyReminder
	}
	if p.ReminderTime != nil {
		cur.ReminderTime = *p.ReminderTime
	}
	if p.ViewMode != nil {
		cur.ViewMode = *p.ViewMode
	}
	return s.Replace(ctx, cur)
}

func (s *settingsService) Replace(ctx context.Context, next models.AppSettings) (models.AppSettings, error) {
	if err := validateSettings(next); err != nil {
		return models.AppSettings{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return models.AppSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return next, nil
}

func (s *settingsService) SetPIN(ctx context.Context, pin string) error {
	if !models.ValidPIN(pin) {
		return fmt.Errorf("%w: PIN must be 4 to 6 digits", common.ErrValidation)
	}
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	cur.PIN = &pin
	cur.SecurityEnabled = true
	if err := s.repo.Save(ctx, cur); err != nil {
		return fmt.Errorf("save PIN: %w", err)
	}
	s.opts.log.Info(ctx, "PIN set, security enabled")
	return nil
}

func (s *settingsService) ClearPIN(ctx context.Context) error {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	cur.PIN = nil
	cur.SecurityEnabled = false
	if err := s.repo.Save(ctx, cur); err != nil {
		return fmt.Errorf("clear PIN: %w", err)
	}
	s.opts.log.Info(ctx, "PIN cleared, security disabled")
	return nil
}

func (s *settingsService) Locked(ctx context.Context) bool {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		s.opts.log.Warn(ctx, "settings unreadable, treating diary as locked", "error", err)
		return true
	}
	return cur.SecurityEnabled && cur.HasPIN()
}

func (s *settingsService) Unlock(ctx context.Context, pin string) error {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !cur.SecurityEnabled || !cur.HasPIN() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(*cur.PIN), []byte(pin)) != 1 {
		s.opts.log.Warn(ctx, "unlock rejected")
		return common.ErrLocked
	}
	return nil
}

func validateSettings(s models.AppSettings) error {
	switch {
	case !s.Theme.Valid():
		return fmt.Errorf("%w: unknown theme %q", common.ErrValidation, s.Theme)
	case !s.ViewMode.Valid():
		return fmt.Errorf("%w: unknown view mode %q", common.ErrValidation, s.ViewMode)
	case !models.ValidReminderTime(s.ReminderTime):
		return fmt.Errorf("%w: reminder time %q is not HH:MM", common.ErrValidation, s.ReminderTime)
	case s.PIN != nil && !models.ValidPIN(*s.PIN):
		return fmt.Errorf("%w: PIN must be 4 to 6 digits", common.ErrValidation)
	case s.SecurityEnabled && !s.HasPIN():
		return fmt.Errorf("%w: security requires a PIN", common.ErrValidation)
	}
	return nil
}
