package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/pkg/models"
)

func seedEntry(t *testing.T, r *Repo, userID string) models.MangaEntry {
	t.Helper()
	now := time.Now().UTC()
	e := models.MangaEntry{
		ID:         uuid.NewString(),
		Title:      "Vinland Saga",
		Author:     "Yukimura",
		Chapters:   200,
		Type:       "Manga",
		Genre:      []string{"Action", "Historical"},
		ReadStatus: models.StatusReading,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, r.Create(t.Context(), e))
	return e
}

func TestRepoScopesByOwner(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()
	stranger := uuid.NewString()

	e := seedEntry(t, repo, owner)

	got, err := repo.Get(t.Context(), stranger, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	title := "Renamed"
	ok, err := repo.Update(t.Context(), stranger, e.ID, UpdateFields{Title: &title})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(t.Context(), stranger, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// owner still sees the untouched entry
	got, err = repo.Get(t.Context(), owner, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Vinland Saga", got.Title)
}

func TestRepoUpdateAppliesOnlyGivenFields(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()
	e := seedEntry(t, repo, owner)

	rating := 8
	fav := true
	ok, err := repo.Update(t.Context(), owner, e.ID, UpdateFields{Rating: &rating, IsFavourite: &fav})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.Get(t.Context(), owner, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 8, *got.Rating)
	assert.True(t, got.IsFavourite)
	assert.Equal(t, "Vinland Saga", got.Title)
	assert.Equal(t, []string{"Action", "Historical"}, got.Genre)
	assert.Equal(t, 200, got.Chapters)
}

func TestRepoUpdateWithNoFields(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()
	e := seedEntry(t, repo, owner)

	ok, err := repo.Update(t.Context(), owner, e.ID, UpdateFields{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Update(t.Context(), owner, uuid.NewString(), UpdateFields{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepoOptionalFieldsRoundTrip(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()

	rating := 10
	year := 1997
	now := time.Now().UTC()
	e := models.MangaEntry{
		ID:              uuid.NewString(),
		Title:           "One Piece",
		Chapters:        1100,
		Type:            "Manga",
		Genre:           []string{"Adventure"},
		Rating:          &rating,
		ReadStatus:      models.StatusReading,
		ReadingPlatform: "Shonen Jump",
		ReleaseYear:     &year,
		PosterURL:       "https://example.com/op.jpg",
		IsFavourite:     true,
		UserID:          owner,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, repo.Create(t.Context(), e))

	got, err := repo.Get(t.Context(), owner, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Empty(t, got.Author)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 10, *got.Rating)
	require.NotNil(t, got.ReleaseYear)
	assert.Equal(t, 1997, *got.ReleaseYear)
	assert.Equal(t, "Shonen Jump", got.ReadingPlatform)
	assert.Equal(t, "https://example.com/op.jpg", got.PosterURL)
	assert.True(t, got.IsFavourite)
}

func TestRepoListOnlyOwnersEntries(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()
	other := uuid.NewString()

	seedEntry(t, repo, owner)
	seedEntry(t, repo, owner)
	seedEntry(t, repo, other)

	entries, err := repo.List(t.Context(), owner)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, owner, e.UserID)
	}

	entries, err = repo.List(t.Context(), uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepoUpdateBumpsUpdatedAt(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()

	past := time.Now().UTC().Add(-time.Hour)
	e := models.MangaEntry{
		ID:         uuid.NewString(),
		Title:      "Vinland Saga",
		Type:       "Manga",
		Genre:      []string{"Historical"},
		ReadStatus: models.StatusReading,
		UserID:     owner,
		CreatedAt:  past,
		UpdatedAt:  past,
	}
	require.NoError(t, repo.Create(t.Context(), e))

	title := "Vinland Saga (Deluxe)"
	ok, err := repo.Update(t.Context(), owner, e.ID, UpdateFields{Title: &title})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.Get(t.Context(), owner, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.UpdatedAt.After(past), "updated_at %s should be after %s", got.UpdatedAt, past)
	assert.WithinDuration(t, past, got.CreatedAt, time.Second)
}

func TestRepoGetCorruptGenreRow(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	owner := uuid.NewString()
	e := seedEntry(t, repo, owner)

	_, err := repo.DB.ExecContext(t.Context(), `UPDATE manga_entries SET genre = 'not json' WHERE id = ?`, e.ID)
	require.NoError(t, err)

	got, err := repo.Get(t.Context(), owner, e.ID)
	require.Error(t, err)
	assert.Nil(t, got)
}
