// model/progress.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Progress is the per-(learner, track) cursor. Position only ever moves
// forward; LastSeenAt is refreshed on every read as a liveness signal.
type Progress struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	LearnerID  string    `json:"learner_id" gorm:"not null;uniqueIndex:idx_progress_learner_track;size:36"`
	TrackID    string    `json:"track_id" gorm:"not null;uniqueIndex:idx_progress_learner_track;size:36"`
	Position   int       `json:"position" gorm:"not null;default:1"`
	LastSeenAt time.Time `json:"last_seen_at" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Attempt is an append-only record of a learner's performance on a lesson.
// Rows are never edited or deleted; a failing attempt is still history.
type Attempt struct {
	ID              string         `json:"id" gorm:"primaryKey;size:36"`
	LearnerID       string         `json:"learner_id" gorm:"not null;index;size:36"`
	LessonID        string         `json:"lesson_id" gorm:"not null;index;size:36"`
	Kind            string         `json:"kind" gorm:"not null;size:16"`
	Score           *float64       `json:"score,omitempty"`
	MaxScore        *float64       `json:"max_score,omitempty"`
	DurationSeconds *int           `json:"duration_seconds,omitempty"`
	WeakTags        datatypes.JSON `json:"weak_tags"` // JSON array of weak-topic tags
	CreatedAt       time.Time      `json:"created_at" gorm:"not null"`
}
