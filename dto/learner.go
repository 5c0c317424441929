package dto

import "time"

// ResolveLearnerRequest carries an optional client-generated identifier.
// An empty LearnerID asks the server to mint one.
type ResolveLearnerRequest struct {
	LearnerID string `json:"learner_id" validate:"omitempty,uuid"`
}

func (r ResolveLearnerRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ResolveLearnerResponse struct {
	LearnerID string `json:"learner_id"`
	IsNew     bool   `json:"is_new"`
}

type ProgressResponse struct {
	LearnerID    string    `json:"learner_id"`
	TrackSlug    string    `json:"track_slug"`
	Position     int       `json:"position"`
	LessonsTotal int       `json:"lessons_total"`
	Completed    int       `json:"completed"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// NextLessonResponse reports Available=false when the cursor points past the
// authored curriculum (or the track has no lessons yet). That is a valid
// state, not an error.
type NextLessonResponse struct {
	Available bool            `json:"available"`
	Position  int             `json:"position"`
	Lesson    *LessonResponse `json:"lesson,omitempty"`
}
