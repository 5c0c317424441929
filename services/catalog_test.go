package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTrack_CreatesWithDefaults(t *testing.T) {
	ts := newTestServices(t)

	resp, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:  "go-basics",
		Title: "Go Basics",
	})
	require.NoError(t, err)

	assert.True(t, resp.WasCreated)
	assert.Equal(t, "go-basics", resp.Track.Slug)
	assert.Equal(t, shared.CategoryCustom, resp.Track.Category)
	assert.Equal(t, shared.StatusDraft, resp.Track.Status)
	assert.NotEmpty(t, resp.Track.ID)
	assert.Empty(t, resp.Track.Sources)
}

func TestEnsureTrack_SecondCallMerges(t *testing.T) {
	ts := newTestServices(t)

	first, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:   "go-basics",
		Title:  "Go Basics",
		Status: strPtr(shared.StatusActive),
	})
	require.NoError(t, err)
	require.True(t, first.WasCreated)

	// Same slug again: no new row, title overwritten, omitted status kept.
	second, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:  "go-basics",
		Title: "Go Basics, Revised",
	})
	require.NoError(t, err)

	assert.False(t, second.WasCreated)
	assert.Equal(t, first.Track.ID, second.Track.ID)
	assert.Equal(t, "Go Basics, Revised", second.Track.Title)
	assert.Equal(t, shared.StatusActive, second.Track.Status, "omitted status must preserve the stored value")
}

func TestEnsureTrack_ExplicitEmptySourcesOverwrites(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:    "go-basics",
		Title:   "Go Basics",
		Sources: &[]string{"https://go.dev/doc"},
	})
	require.NoError(t, err)

	// An explicitly sent empty list clears the field; it is not "omitted".
	resp, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:    "go-basics",
		Title:   "Go Basics",
		Sources: &[]string{},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Track.Sources)
}

func TestEnsureTrack_NormalizesSlug(t *testing.T) {
	ts := newTestServices(t)

	first, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:  "  Go-Basics ",
		Title: "Go Basics",
	})
	require.NoError(t, err)
	assert.Equal(t, "go-basics", first.Track.Slug)

	second, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:  "GO-BASICS",
		Title: "Go Basics",
	})
	require.NoError(t, err)
	assert.False(t, second.WasCreated, "slug casing variants must hit the same row")
	assert.Equal(t, first.Track.ID, second.Track.ID)
}

func TestEnsureTrack_ShortSlugRejected(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:  " a ",
		Title: "Too Short",
	})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestEnsureTrack_ResolvesOwner(t *testing.T) {
	ts := newTestServices(t)
	ownerID := uuid.New().String()

	resp, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug:    "owned-track",
		Title:   "Owned Track",
		OwnerID: strPtr(ownerID),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Track.OwnerID)
	assert.Equal(t, ownerID, *resp.Track.OwnerID)

	// The owner row was created lazily by the resolver.
	learner, err := ts.sql.GetLearner(ownerID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, learner.ID)
}

func TestSeedLessons_UnknownTrack(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.catalog.SeedLessons("missing", dto.SeedLessonsRequest{
		Lessons: []dto.SeedLessonPayload{{Position: 1, Title: "Intro"}},
	})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestSeedLessons_DuplicatePositionRejected(t *testing.T) {
	ts := newTestServices(t)

	track, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{Slug: "go-basics", Title: "Go Basics"})
	require.NoError(t, err)

	_, err = ts.catalog.SeedLessons("go-basics", dto.SeedLessonsRequest{
		Lessons: []dto.SeedLessonPayload{
			{Position: 1, Title: "Intro"},
			{Position: 2, Title: "Types"},
			{Position: 2, Title: "Types Again"},
		},
	})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)

	// All-or-nothing: the valid payloads must not have been written either.
	count, err := ts.sql.CountLessons(track.Track.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSeedLessons_OverwriteKeepsStoredIDs(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{Slug: "go-basics", Title: "Go Basics"})
	require.NoError(t, err)

	first, err := ts.catalog.SeedLessons("go-basics", dto.SeedLessonsRequest{
		Lessons: []dto.SeedLessonPayload{
			{Position: 1, Title: "Intro"},
			{Position: 2, Title: "Types"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, first.Count)

	second, err := ts.catalog.SeedLessons("go-basics", dto.SeedLessonsRequest{
		Lessons: []dto.SeedLessonPayload{
			{Position: 2, Title: "Types, Revised", Tags: []string{"types"}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Count)

	assert.Equal(t, first.Lessons[1].ID, second.Lessons[0].ID, "overwriting a position must keep the stored lesson id")
	assert.Equal(t, "Types, Revised", second.Lessons[0].Title)

	detail, err := ts.catalog.GetTrackDetail("go-basics")
	require.NoError(t, err)
	assert.Len(t, detail.Lessons, 2, "overwrite must not add rows")
}

func TestListTracks_FiltersByStatus(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug: "active-track", Title: "Active", Status: strPtr(shared.StatusActive),
	})
	require.NoError(t, err)
	_, err = ts.catalog.EnsureTrack(dto.EnsureTrackRequest{
		Slug: "draft-track", Title: "Draft",
	})
	require.NoError(t, err)

	all, err := ts.catalog.ListTracks("")
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	active, err := ts.catalog.ListTracks(shared.StatusActive)
	require.NoError(t, err)
	require.Equal(t, 1, active.Total)
	assert.Equal(t, "active-track", active.Tracks[0].Slug)
}

func TestListTracks_CacheUnavailableFallsThrough(t *testing.T) {
	ts := newTestServices(t)
	ts.catalog.cacheSvc = &RedisService{}

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{Slug: "go-basics", Title: "Go Basics"})
	require.NoError(t, err)

	list, err := ts.catalog.ListTracks("")
	require.NoError(t, err, "an unreachable cache must not break listing")
	assert.Equal(t, 1, list.Total)
}

func TestListTracks_EmptyCatalogIsServed(t *testing.T) {
	ts := newTestServices(t)
	ts.catalog.cacheSvc = &RedisService{}

	// An empty catalog is a valid answer, not a miss to keep retrying.
	list, err := ts.catalog.ListTracks("")
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.Empty(t, list.Tracks)
}

func TestGetTrackDetail_CacheUnavailableFallsThrough(t *testing.T) {
	ts := newTestServices(t)
	ts.catalog.cacheSvc = &RedisService{}

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{Slug: "go-basics", Title: "Go Basics"})
	require.NoError(t, err)
	_, err = ts.catalog.SeedLessons("go-basics", dto.SeedLessonsRequest{
		Lessons: []dto.SeedLessonPayload{{Position: 1, Title: "Intro"}},
	})
	require.NoError(t, err)

	detail, err := ts.catalog.GetTrackDetail("go-basics")
	require.NoError(t, err, "an unreachable cache must not break track reads")
	assert.Equal(t, "go-basics", detail.Track.Slug)
	require.Len(t, detail.Lessons, 1)
	assert.Equal(t, "Intro", detail.Lessons[0].Title)
}
