package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrackWithLessons(t *testing.T, ts *testServices) []dto.SeededLesson {
	t.Helper()

	_, err := ts.catalog.EnsureTrack(dto.EnsureTrackRequest{Slug: "go-basics", Title: "Go Basics"})
	require.NoError(t, err)

	seeded, err := ts.catalog.SeedLessons("go-basics", dto.SeedLessonsRequest{
		Lessons: []dto.SeedLessonPayload{
			{Position: 1, Title: "Intro"},
			{Position: 2, Title: "Types"},
		},
	})
	require.NoError(t, err)

	return seeded.Lessons
}

func TestRecordAttempt_PassingScoreAdvances(t *testing.T) {
	ts := newTestServices(t)
	lessons := seedTrackWithLessons(t, ts)
	learnerID := uuid.New().String()

	resp, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
		LearnerID: learnerID,
		LessonID:  lessons[0].ID,
		Kind:      shared.AttemptKindQuiz,
		Score:     floatPtr(80),
		MaxScore:  floatPtr(100),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AttemptID)
	assert.True(t, resp.Advanced)
	assert.Equal(t, 2, resp.Position)
}

func TestRecordAttempt_FailingScoreDoesNotAdvance(t *testing.T) {
	ts := newTestServices(t)
	lessons := seedTrackWithLessons(t, ts)
	learnerID := uuid.New().String()

	resp, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
		LearnerID: learnerID,
		LessonID:  lessons[0].ID,
		Kind:      shared.AttemptKindQuiz,
		Score:     floatPtr(50),
		MaxScore:  floatPtr(100),
	})
	require.NoError(t, err)

	assert.False(t, resp.Advanced)
	assert.Equal(t, 1, resp.Position)

	// The failing attempt is still history.
	history, err := ts.attempt.GetLearnerAttempts(learnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, history.Total)
}

func TestRecordAttempt_ThresholdIsInclusive(t *testing.T) {
	ts := newTestServices(t)
	lessons := seedTrackWithLessons(t, ts)

	resp, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
		LearnerID: uuid.New().String(),
		LessonID:  lessons[0].ID,
		Kind:      shared.AttemptKindChallenge,
		Score:     floatPtr(70),
		MaxScore:  floatPtr(100),
	})
	require.NoError(t, err)
	assert.True(t, resp.Advanced, "a score exactly at the threshold must pass")
}

func TestRecordAttempt_MissingScoreNeverAdvances(t *testing.T) {
	ts := newTestServices(t)
	lessons := seedTrackWithLessons(t, ts)

	// Score without max-score: unscoreable, recorded but never passing.
	resp, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
		LearnerID: uuid.New().String(),
		LessonID:  lessons[0].ID,
		Kind:      shared.AttemptKindProject,
		Score:     floatPtr(100),
	})
	require.NoError(t, err)
	assert.False(t, resp.Advanced)
	assert.Equal(t, 1, resp.Position)
}

func TestRecordAttempt_ZeroMaxScoreNeverAdvances(t *testing.T) {
	ts := newTestServices(t)
	lessons := seedTrackWithLessons(t, ts)

	resp, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
		LearnerID: uuid.New().String(),
		LessonID:  lessons[0].ID,
		Kind:      shared.AttemptKindQuiz,
		Score:     floatPtr(0),
		MaxScore:  floatPtr(0),
	})
	require.NoError(t, err)
	assert.False(t, resp.Advanced)
}

func TestRecordAttempt_UnknownLessonWritesNothing(t *testing.T) {
	ts := newTestServices(t)
	seedTrackWithLessons(t, ts)
	learnerID := uuid.New().String()

	_, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
		LearnerID: learnerID,
		LessonID:  uuid.New().String(),
		Kind:      shared.AttemptKindQuiz,
		Score:     floatPtr(100),
		MaxScore:  floatPtr(100),
	})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)

	var count int64
	require.NoError(t, ts.sql.Db().Model(&model.Attempt{}).Count(&count).Error)
	assert.Zero(t, count, "rejected attempt must not be persisted")
}

func TestGetLearnerAttempts_NewestFirst(t *testing.T) {
	ts := newTestServices(t)
	lessons := seedTrackWithLessons(t, ts)
	learnerID := uuid.New().String()

	for _, lesson := range lessons {
		_, err := ts.attempt.RecordAttempt(dto.RecordAttemptRequest{
			LearnerID: learnerID,
			LessonID:  lesson.ID,
			Kind:      shared.AttemptKindQuiz,
			Score:     floatPtr(90),
			MaxScore:  floatPtr(100),
			WeakTags:  []string{"syntax"},
		})
		require.NoError(t, err)
	}

	history, err := ts.attempt.GetLearnerAttempts(learnerID)
	require.NoError(t, err)

	require.Equal(t, 2, history.Total)
	assert.Equal(t, []string{"syntax"}, history.Attempts[0].WeakTags)
	assert.False(t, history.Attempts[0].CreatedAt.Before(history.Attempts[1].CreatedAt))
}
