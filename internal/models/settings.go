package models

import (
	"regexp"
	"slices"
)

// SettingsKey addresses the single AppSettings record.
const SettingsKey = "app_settings"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewGrid     ViewMode = "grid"
	ViewCalendar ViewMode = "calendar"
)

func (v ViewMode) Valid() bool {
	return slices.Contains([]ViewMode{ViewList, ViewGrid, ViewCalendar}, v)
}

// AppSettings holds user preferences. Exactly one record exists logically.
type AppSettings struct {
	Theme             Theme    `json:"theme"`
	SecurityEnabled   bool     `json:"securityEnabled"`
	PIN               *string  `json:"pin"`
	BiometricsEnabled bool     `json:"biometricsEnabled"`
	DailyReminder     bool     `json:"dailyReminder"`
	ReminderTime      string   `json:"reminderTime"`
	ViewMode          ViewMode `json:"viewMode"`
}

// DefaultSettings returns the record used when nothing has been saved yet.
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:             ThemeLight,
		SecurityEnabled:   false,
		PIN:               nil,
		BiometricsEnabled: false,
		DailyReminder:     false,
		ReminderTime:      "20:00",
		ViewMode:          ViewList,
	}
}

// HasPIN reports whether a PIN is configured.
func (s AppSettings) HasPIN() bool {
	return s.PIN != nil && *s.PIN != ""
}

var (
	reminderTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	pinRe          = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// ValidReminderTime reports whether s is a 24h "HH:MM" string.
func ValidReminderTime(s string) bool {
	return reminderTimeRe.MatchString(s)
}

// ValidPIN reports whether s is a 4 to 6 digit numeric PIN.
func ValidPIN(s string) bool {
	return pinRe.MatchString(s)
}
