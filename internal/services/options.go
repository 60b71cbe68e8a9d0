// Package services implements the editor and settings behavior on top of
// the entry and settings repositories: id assignment, timestamps,
// validation, filtering, calendar grouping, statistics and the PIN gate.
package services

import (
	"time"

	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/google/uuid"
)

type options struct {
	now   func() time.Time
	newID func() string
	loc   *time.Location
	log   logging.Logger
}

type Option func(*options)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides uuid.NewString for new entries.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithLocation sets the time zone used for calendar days and streaks.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
		loc:   time.Local,
		log:   logging.Nop(),
	}
	for _, f := range opts {
		f(&o)
	}
	return o
}
