package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrack(t *testing.T, ts *testServices, slug string, lessons ...dto.SeedLessonPayload) string {
	t.Helper()

	track, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{Slug: slug, Title: slug})
	require.NoError(t, err)

	if len(lessons) > 0 {
		_, err = ts.catalog.SeedLessons(slug, dto.SeedLessonsRequest{Lessons: lessons})
		require.NoError(t, err)
	}

	return track.Track.ID
}

func TestGetOrCreateProgress_RepeatedAccessFindsStoredRow(t *testing.T) {
	ts := newTestServices(t)
	trackID := seedTrack(t, ts, "go-basics", dto.SeedLessonPayload{Position: 1, Title: "Intro"})
	learnerID := uuid.New().String()

	first, err := ts.sql.GetOrCreateProgress(learnerID, trackID)
	require.NoError(t, err)

	// The second access lost the insert and must find the stored row, not
	// query by the id minted for the failed insert.
	second, err := ts.sql.GetOrCreateProgress(learnerID, trackID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.Position)
	assert.False(t, second.LastSeenAt.Before(first.LastSeenAt), "every access must refresh last-seen")

	_, err = ts.sql.AdvanceProgress(learnerID, trackID, 2)
	require.NoError(t, err)

	third, err := ts.sql.GetOrCreateProgress(learnerID, trackID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 2, third.Position, "a later access must report the advanced position")
}

func TestGetOrInitCursor_StartsAtOne(t *testing.T) {
	ts := newTestServices(t)
	trackID := seedTrack(t, ts, "go-basics", dto.SeedLessonPayload{Position: 1, Title: "Intro"})
	learnerID := uuid.New().String()

	position, err := ts.progress.GetOrInitCursor(learnerID, trackID)
	require.NoError(t, err)
	assert.Equal(t, 1, position)

	// A second read is a no-op on the position.
	position, err = ts.progress.GetOrInitCursor(learnerID, trackID)
	require.NoError(t, err)
	assert.Equal(t, 1, position)
}

func TestAdvanceIfEligible_MovesForwardOnce(t *testing.T) {
	ts := newTestServices(t)
	trackID := seedTrack(t, ts, "go-basics",
		dto.SeedLessonPayload{Position: 1, Title: "Intro"},
		dto.SeedLessonPayload{Position: 2, Title: "Types"},
	)
	learnerID := uuid.New().String()

	position, advanced, err := ts.progress.AdvanceIfEligible(learnerID, trackID, 1)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, 2, position)

	// Re-passing the same lesson is a harmless no-op.
	position, advanced, err = ts.progress.AdvanceIfEligible(learnerID, trackID, 1)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 2, position)
}

func TestAdvanceIfEligible_OutOfOrderIsCommutative(t *testing.T) {
	ts := newTestServices(t)
	trackID := seedTrack(t, ts, "go-basics",
		dto.SeedLessonPayload{Position: 1, Title: "Intro"},
		dto.SeedLessonPayload{Position: 2, Title: "Types"},
		dto.SeedLessonPayload{Position: 3, Title: "Funcs"},
	)
	learnerID := uuid.New().String()

	// Passing lesson 3 first pushes the cursor to 4.
	position, advanced, err := ts.progress.AdvanceIfEligible(learnerID, trackID, 3)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, 4, position)

	// A late arrival for lesson 1 cannot pull it back.
	position, advanced, err = ts.progress.AdvanceIfEligible(learnerID, trackID, 1)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 4, position)
}

func TestGetProgressSummary(t *testing.T) {
	ts := newTestServices(t)
	trackID := seedTrack(t, ts, "go-basics",
		dto.SeedLessonPayload{Position: 1, Title: "Intro"},
		dto.SeedLessonPayload{Position: 2, Title: "Types"},
		dto.SeedLessonPayload{Position: 3, Title: "Funcs"},
	)
	learnerID := uuid.New().String()

	_, _, err := ts.progress.AdvanceIfEligible(learnerID, trackID, 1)
	require.NoError(t, err)

	summary, err := ts.progress.GetProgressSummary(learnerID, "go-basics")
	require.NoError(t, err)

	assert.Equal(t, learnerID, summary.LearnerID)
	assert.Equal(t, "go-basics", summary.TrackSlug)
	assert.Equal(t, 2, summary.Position)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 3, summary.LessonsTotal)
	assert.False(t, summary.LastSeenAt.IsZero())
}

func TestGetProgressSummary_UnknownTrack(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.progress.GetProgressSummary(uuid.New().String(), "missing")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestNextLesson_ServesCursorLesson(t *testing.T) {
	ts := newTestServices(t)
	seedTrack(t, ts, "go-basics",
		dto.SeedLessonPayload{Position: 1, Title: "Intro", Tags: []string{"basics"}},
		dto.SeedLessonPayload{Position: 2, Title: "Types"},
	)

	next, err := ts.progress.NextLesson(uuid.New().String(), "go-basics")
	require.NoError(t, err)

	assert.True(t, next.Available)
	assert.Equal(t, 1, next.Position)
	require.NotNil(t, next.Lesson)
	assert.Equal(t, "Intro", next.Lesson.Title)
	assert.Equal(t, []string{"basics"}, next.Lesson.Tags)
}

func TestNextLesson_UnseededTrack(t *testing.T) {
	ts := newTestServices(t)
	seedTrack(t, ts, "empty-track")

	next, err := ts.progress.NextLesson(uuid.New().String(), "empty-track")
	require.NoError(t, err)

	assert.False(t, next.Available)
	assert.Equal(t, 1, next.Position)
	assert.Nil(t, next.Lesson)
}

func TestNextLesson_PositionalGap(t *testing.T) {
	ts := newTestServices(t)
	trackID := seedTrack(t, ts, "gapped",
		dto.SeedLessonPayload{Position: 1, Title: "Intro"},
		dto.SeedLessonPayload{Position: 3, Title: "Funcs"},
	)
	learnerID := uuid.New().String()

	_, _, err := ts.progress.AdvanceIfEligible(learnerID, trackID, 1)
	require.NoError(t, err)

	// Cursor sits at 2 but nothing is seeded there: not-available, not an
	// error, and the cursor stays put.
	next, err := ts.progress.NextLesson(learnerID, "gapped")
	require.NoError(t, err)

	assert.False(t, next.Available)
	assert.Equal(t, 2, next.Position)
}
