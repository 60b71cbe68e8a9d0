package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/repositories/entries"
)

// Draft carries the editable fields of a new entry.
type Draft struct {
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Mood       models.Mood     `json:"mood"`
	Category   models.Category `json:"category"`
	Tags       []string        `json:"tags"`
	IsFavorite bool            `json:"isFavorite"`
	IsPrivate  bool            `json:"isPrivate"`
	Images     []string        `json:"images"`
	Audio      *string         `json:"audio,omitempty"`
	Drawing    *string         `json:"drawing,omitempty"`
	Location   *string         `json:"location,omitempty"`
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	FavoritesOnly bool
	Category      models.Category
	Mood          models.Mood
	Tag           string
	// Query matches title, content or tags, case-insensitively.
	Query string
}

// Day groups the entries of one calendar day, newest first.
type Day struct {
	Day     int            `json:"day"`
	Entries []models.Entry `json:"entries"`
}

type Stats struct {
	Total       int                     `json:"total"`
	Favorites   int                     `json:"favorites"`
	AverageMood float64                 `json:"averageMood"`
	ByMood      map[models.Mood]int     `json:"byMood"`
	ByCategory  map[models.Category]int `json:"byCategory"`
	// Streak counts consecutive days with entries ending today, or
	// yesterday when nothing was written today yet.
	Streak int `json:"streak"`
}

type EntryService interface {
	Create(ctx context.Context, d Draft) (models.Entry, error)
	Update(ctx context.Context, e models.Entry) (models.Entry, error)
	ToggleFavorite(ctx context.Context, id string) (models.Entry, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.Entry, error)
	List(ctx context.Context, f Filter) ([]models.Entry, error)
	ByDay(ctx context.Context, year int, month time.Month) ([]Day, error)
	Stats(ctx context.Context) (Stats, error)
}

type entryService struct {
	repo entries.Repository
	opts options
}

func NewEntryService(repo entries.Repository, opts ...Option) EntryService {
	return &entryService{repo: repo, opts: buildOptions(opts)}
}

func (s *entryService) Create(ctx context.Context, d Draft) (models.Entry, error) {
	now := models.Millis(s.opts.now())
	e := models.Entry{
		ID:         s.opts.newID(),
		Title:      d.Title,
		Content:    d.Content,
		Date:       now,
		UpdatedAt:  now,
		Mood:       d.Mood,
		Category:   d.Category,
		Tags:       d.Tags,
		IsFavorite: d.IsFavorite,
		IsPrivate:  d.IsPrivate,
		Images:     d.Images,
		Audio:      d.Audio,
		Drawing:    d.Drawing,
		Location:   d.Location,
	}
	if err := prepare(&e); err != nil {
		return models.Entry{}, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return models.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	s.opts.log.Debug(ctx, "entry created", "id", e.ID)
	return e, nil
}

// Update saves e over the stored entry with the same id. The original date
// is kept and updatedAt is refreshed.
func (s *entryService) Update(ctx context.Context, e models.Entry) (models.Entry, error) {
	stored, err := s.repo.Get(ctx, e.ID)
	if err != nil {
		return models.Entry{}, err
	}
	e.Date = stored.Date
	e.UpdatedAt = models.Millis(s.opts.now())
	if err := prepare(&e); err != nil {
		return models.Entry{}, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return models.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

func (s *entryService) ToggleFavorite(ctx context.Context, id string) (models.Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Entry{}, err
	}
	e.IsFavorite = !e.IsFavorite
	e.UpdatedAt = models.Millis(s.opts.now())
	if err := s.repo.Save(ctx, e); err != nil {
		return models.Entry{}, fmt.Errorf("toggle favorite: %w", err)
	}
	return e, nil
}

func (s *entryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (s *entryService) Get(ctx context.Context, id string) (models.Entry, error) {
	return s.repo.Get(ctx, id)
}

func (s *entryService) List(ctx context.Context, f Filter) ([]models.Entry, error) {
	var (
		all []models.Entry
		err error
	)
	if f.FavoritesOnly {
		all, err = s.repo.ListFavorites(ctx)
	} else {
		all, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	return slices.DeleteFunc(all, func(e models.Entry) bool {
		return !f.matches(e, q)
	}), nil
}

func (f Filter) matches(e models.Entry, q string) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Mood != "" && e.Mood != f.Mood {
		return false
	}
	if f.Tag != "" && !slices.Contains(e.Tags, f.Tag) {
		return false
	}
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Content), q) {
		return true
	}
	return slices.ContainsFunc(e.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

// ByDay returns the entries of the given month grouped by local day,
// earliest day first. Days without entries are omitted.
func (s *entryService) ByDay(ctx context.Context, year int, month time.Month) ([]Day, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.opts.loc)
	to := from.AddDate(0, 1, 0)

	es, err := s.repo.ListBetween(ctx, models.Millis(from), models.Millis(to))
	if err != nil {
		return nil, err
	}

	days := make([]Day, 0)
	for i := len(es) - 1; i >= 0; i-- {
		d := es[i].Time(s.opts.loc).Day()
		if n := len(days); n > 0 && days[n-1].Day == d {
			days[n-1].Entries = append([]models.Entry{es[i]}, days[n-1].Entries...)
			continue
		}
		days = append(days, Day{Day: d, Entries: []models.Entry{es[i]}})
	}
	return days, nil
}

func (s *entryService) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:      len(all),
		ByMood:     make(map[models.Mood]int, len(models.Moods)),
		ByCategory: make(map[models.Category]int, len(models.Categories)),
	}
	for _, m := range models.Moods {
		st.ByMood[m] = 0
	}
	for _, c := range models.Categories {
		st.ByCategory[c] = 0
	}

	weights, rated := 0, 0
	for _, e := range all {
		if e.IsFavorite {
			st.Favorites++
		}
		if w := e.Mood.Weight(); w > 0 {
			weights += w
			rated++
			st.ByMood[e.Mood]++
		}
		if e.Category.Valid() {
			st.ByCategory[e.Category]++
		}
	}
	if rated > 0 {
		st.AverageMood = float64(weights) / float64(rated)
	}
	st.Streak = streak(all, s.opts.now().In(s.opts.loc), s.opts.loc)
	return st, nil
}

func streak(all []models.Entry, now time.Time, loc *time.Location) int {
	type ymd struct {
		y int
		m time.Month
		d int
	}
	key := func(t time.Time) ymd {
		y, m, d := t.Date()
		return ymd{y, m, d}
	}

	written := make(map[ymd]struct{}, len(all))
	for _, e := range all {
		written[key(e.Time(loc))] = struct{}{}
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	if _, ok := written[key(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for {
		if _, ok := written[key(day)]; !ok {
			return n
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
}

// prepare applies editor defaults and validation to e in place.
func prepare(e *models.Entry) error {
	if strings.TrimSpace(e.Title) == "" && strings.TrimSpace(e.Content) == "" {
		return fmt.Errorf("%w: title and content are both empty", common.ErrValidation)
	}
	if e.Mood == "" {
		e.Mood = models.MoodOkay
	}
	if !e.Mood.Valid() {
		return fmt.Errorf("%w: unknown mood %q", common.ErrValidation, e.Mood)
	}
	if e.Category == "" {
		e.Category = models.CategoryPersonal
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", common.ErrValidation, e.Category)
	}
	e.Tags = models.NormalizeTags(e.Tags)
	if e.Images == nil {
		e.Images = []string{}
	}
	return nil
}
