package services

import (
	"errors"
	"fmt"

	"github.com/alphabatem/common/context"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
	"gorm.io/gorm"
)

// ProgressService owns the per-(learner, track) cursor. The cursor starts at
// 1, only moves forward, and assumes lesson positions form a dense 1..N
// sequence; a gap surfaces as "no lesson available" rather than an error.
type ProgressService struct {
	context.DefaultService

	sqlSvc     *PostgresService
	learnerSvc *LearnerService
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.learnerSvc = svc.Service(LEARNER_SVC).(*LearnerService)
	return nil
}

// GetOrInitCursor returns the learner's cursor for the track, creating it at
// position 1 on first access. Every call refreshes last-seen.
func (svc *ProgressService) GetOrInitCursor(learnerID, trackID string) (int, error) {
	progress, err := svc.sqlSvc.GetOrCreateProgress(learnerID, trackID)
	if err != nil {
		return 0, svc.sqlSvc.HandleError(err)
	}
	return progress.Position, nil
}

// AdvanceIfEligible bumps the cursor to fromPosition+1 unless it is already
// past it. Repeated or out-of-order submissions for an already-passed lesson
// are harmless no-ops.
func (svc *ProgressService) AdvanceIfEligible(learnerID, trackID string, fromPosition int) (int, bool, error) {
	// Make sure the row exists before the guarded update.
	current, err := svc.GetOrInitCursor(learnerID, trackID)
	if err != nil {
		return 0, false, err
	}

	target := fromPosition + 1
	final, err := svc.sqlSvc.AdvanceProgress(learnerID, trackID, target)
	if err != nil {
		return 0, false, svc.sqlSvc.HandleError(err)
	}

	advanced := final > current
	if advanced {
		advancementTotal.Inc()
	}
	return final, advanced, nil
}

// GetProgressSummary resolves the learner, touches the cursor, and reports it
// together with curriculum counts.
func (svc *ProgressService) GetProgressSummary(learnerID, trackSlug string) (*dto.ProgressResponse, error) {
	resolved, err := svc.learnerSvc.Resolve(learnerID)
	if err != nil {
		return nil, err
	}

	track, err := svc.sqlSvc.GetTrackBySlug(normalizeSlug(trackSlug))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(fmt.Errorf("track %q not found", trackSlug), "Track not found")
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	progress, err := svc.sqlSvc.GetOrCreateProgress(resolved.LearnerID, track.ID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	total, err := svc.sqlSvc.CountLessons(track.ID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.ProgressResponse{
		LearnerID:    resolved.LearnerID,
		TrackSlug:    track.Slug,
		Position:     progress.Position,
		LessonsTotal: int(total),
		Completed:    progress.Position - 1,
		LastSeenAt:   progress.LastSeenAt,
	}, nil
}

// NextLesson serves the lesson at the learner's cursor. A missing lesson at
// that position (unseeded curriculum, cursor past the end, or a positional
// gap) is reported as not-available, which callers must handle explicitly.
func (svc *ProgressService) NextLesson(learnerID, trackSlug string) (*dto.NextLessonResponse, error) {
	resolved, err := svc.learnerSvc.Resolve(learnerID)
	if err != nil {
		return nil, err
	}

	track, err := svc.sqlSvc.GetTrackBySlug(normalizeSlug(trackSlug))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(fmt.Errorf("track %q not found", trackSlug), "Track not found")
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	position, err := svc.GetOrInitCursor(resolved.LearnerID, track.ID)
	if err != nil {
		return nil, err
	}

	lesson, err := svc.sqlSvc.GetLessonByPosition(track.ID, position)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.NextLessonResponse{Available: false, Position: position}, nil
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.NextLessonResponse{
		Available: true,
		Position:  position,
		Lesson: &dto.LessonResponse{
			ID:         lesson.ID,
			TrackID:    lesson.TrackID,
			Position:   lesson.Position,
			Title:      lesson.Title,
			Objectives: fromJSONArray(lesson.Objectives),
			Tags:       fromJSONArray(lesson.Tags),
			SourceURLs: fromJSONArray(lesson.SourceURLs),
		},
	}, nil
}
