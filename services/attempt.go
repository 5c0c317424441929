package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AttemptService records attempts and applies the advancement rule. The
// threshold and the both-fields-required gate are fixed business rules;
// callers needing different policy must wrap this service.
type AttemptService struct {
	context.DefaultService

	sqlSvc      *PostgresService
	learnerSvc  *LearnerService
	progressSvc *ProgressService
}

const ATTEMPT_SVC = "attempt_svc"

func (svc AttemptService) Id() string {
	return ATTEMPT_SVC
}

func (svc *AttemptService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AttemptService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.learnerSvc = svc.Service(LEARNER_SVC).(*LearnerService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	return nil
}

// RecordAttempt appends the attempt and advances the cursor when the score
// clears the pass threshold. The attempt row is written before the
// advancement decision: a failing attempt is still history.
func (svc *AttemptService) RecordAttempt(req dto.RecordAttemptRequest) (*dto.RecordAttemptResponse, error) {
	resolved, err := svc.learnerSvc.Resolve(req.LearnerID)
	if err != nil {
		return nil, err
	}

	lesson, err := svc.sqlSvc.GetLesson(req.LessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(fmt.Errorf("lesson %q not found", req.LessonID), "Lesson not found")
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	attempt := &model.Attempt{
		LearnerID:       resolved.LearnerID,
		LessonID:        lesson.ID,
		Kind:            req.Kind,
		Score:           req.Score,
		MaxScore:        req.MaxScore,
		DurationSeconds: req.DurationSeconds,
		WeakTags:        toJSONArray(req.WeakTags),
	}

	if err := svc.sqlSvc.CreateAttempt(attempt); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	advanced := false
	position := 0

	if isPassing(req.Score, req.MaxScore) {
		position, advanced, err = svc.progressSvc.AdvanceIfEligible(resolved.LearnerID, lesson.TrackID, lesson.Position)
		if err != nil {
			return nil, err
		}
	} else {
		position, err = svc.progressSvc.GetOrInitCursor(resolved.LearnerID, lesson.TrackID)
		if err != nil {
			return nil, err
		}
	}

	attemptsRecordedTotal.WithLabelValues(req.Kind, strconv.FormatBool(advanced)).Inc()
	log.WithFields(log.Fields{"kind": req.Kind, "advanced": advanced}).Info("Attempt recorded")

	return &dto.RecordAttemptResponse{
		AttemptID: attempt.ID,
		Advanced:  advanced,
		Position:  position,
	}, nil
}

// isPassing applies the fixed rule: both score fields present, max-score
// positive, percentage at or above the threshold.
func isPassing(score, maxScore *float64) bool {
	if score == nil || maxScore == nil || *maxScore <= 0 {
		return false
	}
	percentage := *score / *maxScore * 100
	return percentage >= shared.PassThresholdPercent
}

// GetLearnerAttempts lists a learner's attempt history, newest first.
func (svc *AttemptService) GetLearnerAttempts(learnerID string) (*dto.AttemptCollectionResponse, error) {
	resolved, err := svc.learnerSvc.Resolve(learnerID)
	if err != nil {
		return nil, err
	}

	attempts, err := svc.sqlSvc.GetAttemptsByLearner(resolved.LearnerID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	responses := make([]dto.AttemptResponse, len(attempts))
	for i, attempt := range attempts {
		responses[i] = dto.AttemptResponse{
			ID:              attempt.ID,
			LessonID:        attempt.LessonID,
			Kind:            attempt.Kind,
			Score:           attempt.Score,
			MaxScore:        attempt.MaxScore,
			DurationSeconds: attempt.DurationSeconds,
			WeakTags:        fromJSONArray(attempt.WeakTags),
			CreatedAt:       attempt.CreatedAt,
		}
	}

	return &dto.AttemptCollectionResponse{Attempts: responses, Total: len(responses)}, nil
}
