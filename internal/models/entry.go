// Package models defines the diary entry and settings records persisted by daybook.
package models

import (
	"slices"
	"strings"
	"time"
)

// Mood is one of five symbolic mood levels.
type Mood string

const (
	MoodAwful Mood = "awful"
	MoodBad   Mood = "bad"
	MoodOkay  Mood = "okay"
	MoodGood  Mood = "good"
	MoodGreat Mood = "great"
)

// Moods lists all mood levels ordered by weight, lowest first.
var Moods = []Mood{MoodAwful, MoodBad, MoodOkay, MoodGood, MoodGreat}

var moodLabels = map[Mood]string{
	MoodAwful: "Awful",
	MoodBad:   "Bad",
	MoodOkay:  "Okay",
	MoodGood:  "Good",
	MoodGreat: "Great",
}

// Valid reports whether m is a known mood level.
func (m Mood) Valid() bool {
	_, ok := moodLabels[m]
	return ok
}

// Label returns the display label, or the raw value for unknown moods.
func (m Mood) Label() string {
	if l, ok := moodLabels[m]; ok {
		return l
	}
	return string(m)
}

// Weight returns the ordinal weight 1-5, or 0 for unknown moods.
func (m Mood) Weight() int {
	return slices.Index(Moods, m) + 1
}

// Category is one of six fixed entry categories.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryTravel   Category = "travel"
	CategoryHealth   Category = "health"
	CategoryFamily   Category = "family"
	CategoryOther    Category = "other"
)

var Categories = []Category{
	CategoryPersonal, CategoryWork, CategoryTravel, CategoryHealth, CategoryFamily, CategoryOther,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Entry is one diary record. JSON field names are part of the snapshot
// format and must not change.
type Entry struct {
	// ID is assigned by the caller at creation time and never changes.
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`

	// Date is the logical entry date in ms since epoch, set once at creation.
	Date int64 `json:"date"`
	// UpdatedAt is refreshed on every save, ms since epoch.
	UpdatedAt int64 `json:"updatedAt"`

	Mood     Mood     `json:"mood"`
	Category Category `json:"category"`
	Tags     []string `json:"tags"`

	IsFavorite bool `json:"isFavorite"`
	IsPrivate  bool `json:"isPrivate"`

	// Images, Audio and Drawing hold opaque string-encoded binary payloads.
	Images   []string `json:"images"`
	Audio    *string  `json:"audio,omitempty"`
	Drawing  *string  `json:"drawing,omitempty"`
	Location *string  `json:"location,omitempty"`
}

// AddTag appends tag unless it is blank or already present.
func (e *Entry) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(e.Tags, tag) {
		return false
	}
	e.Tags = append(e.Tags, tag)
	return true
}

// RemoveTag drops tag, keeping the order of the remaining ones.
func (e *Entry) RemoveTag(tag string) {
	e.Tags = slices.DeleteFunc(e.Tags, func(t string) bool { return t == tag })
}

// NormalizeTags trims tags and removes blanks and duplicates, keeping first occurrences.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Time returns Date as a time.Time in loc.
func (e Entry) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Date).In(loc)
}

// Millis converts t to the millisecond timestamps used by Entry.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
