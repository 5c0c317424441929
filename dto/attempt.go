package dto

import "time"

type RecordAttemptRequest struct {
	LearnerID       string   `json:"learner_id" validate:"required,uuid"`
	LessonID        string   `json:"lesson_id" validate:"required,uuid"`
	Kind            string   `json:"kind" validate:"required,oneof=quiz challenge project"`
	Score           *float64 `json:"score,omitempty" validate:"omitempty,gte=0"`
	MaxScore        *float64 `json:"max_score,omitempty" validate:"omitempty,gte=0"`
	DurationSeconds *int     `json:"duration_seconds,omitempty" validate:"omitempty,gt=0"`
	WeakTags        []string `json:"weak_tags,omitempty" validate:"omitempty,dive,min=1"`
}

func (r RecordAttemptRequest) Validate() error {
	return GetValidator().Struct(r)
}

type RecordAttemptResponse struct {
	AttemptID string `json:"attempt_id"`
	Advanced  bool   `json:"advanced"`
	Position  int    `json:"position"`
}

type AttemptResponse struct {
	ID              string    `json:"id"`
	LessonID        string    `json:"lesson_id"`
	Kind            string    `json:"kind"`
	Score           *float64  `json:"score,omitempty"`
	MaxScore        *float64  `json:"max_score,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	WeakTags        []string  `json:"weak_tags"`
	CreatedAt       time.Time `json:"created_at"`
}

type AttemptCollectionResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
	Total    int               `json:"total"`
}
