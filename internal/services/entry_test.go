package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/repositories/entries"
	"github.com/dmitrijs2005/daybook/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func setupEntries(t *testing.T, clock *fakeClock) (EntryService, *entries.SQLiteRepository) {
	t.Helper()
	eng, err := storage.Open(context.Background(), storage.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	repo := entries.NewSQLiteRepository(eng.DB(), nil)
	svc := NewEntryService(repo,
		WithClock(clock.Now),
		WithIDGenerator(seqIDs()),
		WithLocation(time.UTC),
	)
	return svc, repo
}

var start = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	svc, repo := setupEntries(t, &fakeClock{t: start})
	ctx := context.Background()

	e, err := svc.Create(ctx, Draft{Title: "Hello", Tags: []string{" a ", "b", "a", ""}})
	require.NoError(t, err)

	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, start.UnixMilli(), e.Date)
	assert.Equal(t, e.Date, e.UpdatedAt)
	assert.Equal(t, models.MoodOkay, e.Mood)
	assert.Equal(t, models.CategoryPersonal, e.Category)
	assert.Equal(t, []string{"a", "b"}, e.Tags)
	assert.NotNil(t, e.Images)

	stored, err := repo.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, e, stored)
}

func TestCreate_Validation(t *testing.T) {
	svc, repo := setupEntries(t, &fakeClock{t: start})
	ctx := context.Background()

	tests := []struct {
		name  string
		draft Draft
	}{
		{"empty", Draft{}},
		{"blank", Draft{Title: "  ", Content: "\n"}},
		{"bad mood", Draft{Title: "x", Mood: "ecstatic"}},
		{"bad category", Draft{Title: "x", Category: "school"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.draft)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_ContentOnlyIsValid(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start})

	_, err := svc.Create(context.Background(), Draft{Content: "just text"})
	require.NoError(t, err)
}

func TestUpdate_KeepsDateRefreshesUpdatedAt(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start, step: time.Hour})
	ctx := context.Background()

	e, err := svc.Create(ctx, Draft{Title: "v1"})
	require.NoError(t, err)

	e.Title = "v2"
	e.Date = 42
	got, err := svc.Update(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, start.UnixMilli(), got.Date)
	assert.Equal(t, start.Add(time.Hour).UnixMilli(), got.UpdatedAt)

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", stored.Title)
}

func TestUpdate_MissingIsNotFound(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start})

	_, err := svc.Update(context.Background(), models.Entry{ID: "ghost", Title: "x"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start, step: time.Minute})
	ctx := context.Background()

	e, err := svc.Create(ctx, Draft{Title: "fav"})
	require.NoError(t, err)

	got, err := svc.ToggleFavorite(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.Greater(t, got.UpdatedAt, e.UpdatedAt)

	got, err = svc.ToggleFavorite(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)

	_, err = svc.ToggleFavorite(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start})
	ctx := context.Background()

	e, err := svc.Create(ctx, Draft{Title: "bye"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, e.ID))
	require.NoError(t, svc.Delete(ctx, e.ID))

	_, err = svc.Get(ctx, e.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_Filters(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start, step: time.Hour})
	ctx := context.Background()

	drafts := []Draft{
		{Title: "Work day", Category: models.CategoryWork, Mood: models.MoodBad, Tags: []string{"office"}},
		{Title: "Beach", Content: "Sunny SEA", Category: models.CategoryTravel, Mood: models.MoodGreat, IsFavorite: true},
		{Title: "Run", Category: models.CategoryHealth, Mood: models.MoodGood, Tags: []string{"sport", "seaside"}},
	}
	for _, d := range drafts {
		_, err := svc.Create(ctx, d)
		require.NoError(t, err)
	}

	titles := func(f Filter) []string {
		es, err := svc.List(ctx, f)
		require.NoError(t, err)
		out := make([]string, 0, len(es))
		for _, e := range es {
			out = append(out, e.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Run", "Beach", "Work day"}, titles(Filter{}))
	assert.Equal(t, []string{"Beach"}, titles(Filter{FavoritesOnly: true}))
	assert.Equal(t, []string{"Work day"}, titles(Filter{Category: models.CategoryWork}))
	assert.Equal(t, []string{"Run"}, titles(Filter{Mood: models.MoodGood}))
	assert.Equal(t, []string{"Work day"}, titles(Filter{Tag: "office"}))
	assert.Equal(t, []string{"Run", "Beach"}, titles(Filter{Query: "sea"}))
	assert.Empty(t, titles(Filter{Query: "mountain"}))
}

func TestByDay_GroupsMonth(t *testing.T) {
	svc, repo := setupEntries(t, &fakeClock{t: start})
	ctx := context.Background()

	at := func(id string, ts time.Time) models.Entry {
		return models.Entry{ID: id, Title: id, Date: ts.UnixMilli(), Tags: []string{}, Images: []string{}}
	}
	require.NoError(t, repo.SaveAll(ctx, []models.Entry{
		at("feb", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)),
		at("m1a", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
		at("m1b", time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)),
		at("m15", time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)),
		at("apr", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	}))

	days, err := svc.ByDay(ctx, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, "m1b", days[0].Entries[0].ID)
	assert.Equal(t, "m1a", days[0].Entries[1].ID)
	assert.Equal(t, 15, days[1].Day)

	days, err = svc.ByDay(ctx, 2023, time.January)
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestStats(t *testing.T) {
	// "now" is 2024-03-10 09:00 UTC.
	svc, repo := setupEntries(t, &fakeClock{t: start})
	ctx := context.Background()

	day := func(d int) int64 { return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC).UnixMilli() }
	require.NoError(t, repo.SaveAll(ctx, []models.Entry{
		{ID: "1", Date: day(9), Mood: models.MoodGreat, Category: models.CategoryWork, IsFavorite: true},
		{ID: "2", Date: day(8), Mood: models.MoodAwful, Category: models.CategoryWork},
		{ID: "3", Date: day(8), Mood: models.MoodOkay, Category: models.CategoryFamily},
		{ID: "4", Date: day(7), Mood: models.MoodGood, Category: models.CategoryTravel},
		{ID: "5", Date: day(3), Mood: models.MoodGood, Category: models.CategoryTravel, IsFavorite: true},
	}))

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 2, st.Favorites)
	assert.InDelta(t, 3.4, st.AverageMood, 1e-9)
	assert.Equal(t, 2, st.ByMood[models.MoodGood])
	assert.Equal(t, 0, st.ByMood[models.MoodBad])
	assert.Equal(t, 2, st.ByCategory[models.CategoryWork])
	assert.Equal(t, 0, st.ByCategory[models.CategoryHealth])
	assert.Equal(t, 3, st.Streak, "no entry today, so the streak runs 9,8,7")
}

func TestStats_Empty(t *testing.T) {
	svc, _ := setupEntries(t, &fakeClock{t: start})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Total)
	assert.Zero(t, st.AverageMood)
	assert.Zero(t, st.Streak)
	assert.Len(t, st.ByMood, 5)
	assert.Len(t, st.ByCategory, 6)
}

type failingEntries struct {
	entries.Repository
	err error
}

func (f failingEntries) ListAll(context.Context) ([]models.Entry, error) { return nil, f.err }
func (f failingEntries) Save(context.Context, models.Entry) error { return f.err }

func TestStorageErrorsPropagate(t *testing.T) {
	boom := fmt.Errorf("%w: disk gone", common.ErrStorageUnavailable)
	svc := NewEntryService(failingEntries{err: boom})
	ctx := context.Background()

	_, err := svc.List(ctx, Filter{})
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	_, err = svc.Stats(ctx)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	_, err = svc.Create(ctx, Draft{Title: "x"})
	require.True(t, errors.Is(err, boom))
}
