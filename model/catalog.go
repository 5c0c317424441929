// model/catalog.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Learner is an anonymous identity. The id is the only attribute a learner
// ever has; rows are created lazily on first reference and never updated.
type Learner struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
}

// Track is a named, ordered curriculum. The slug is the natural key and is
// lowercased before storage.
type Track struct {
	ID       string         `json:"id" gorm:"primaryKey;size:36"`
	Slug     string         `json:"slug" gorm:"uniqueIndex;not null;size:64"`
	Title    string         `json:"title" gorm:"not null"`
	Sources  datatypes.JSON `json:"sources"` // JSON array of canonical reference URLs
	Category string         `json:"category" gorm:"not null;default:custom;size:16"`
	Status   string         `json:"status" gorm:"not null;default:draft;size:16"`
	// Weak back-reference: deleting the learner must not be blocked by an
	// owned track, so the constraint is SET NULL rather than RESTRICT.
	OwnerID   *string   `json:"owner_id,omitempty" gorm:"index;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner   *Learner `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL"`
	Lessons []Lesson `json:"-" gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE"`
}

// Lesson is one ordered unit of a track. (track, position) is unique;
// positions are expected to form a dense 1..N sequence for the cursor to
// walk them, which seeding does not enforce.
type Lesson struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	TrackID    string         `json:"track_id" gorm:"not null;uniqueIndex:idx_lessons_track_position;size:36"`
	Position   int            `json:"position" gorm:"not null;uniqueIndex:idx_lessons_track_position"`
	Title      string         `json:"title" gorm:"not null"`
	Objectives datatypes.JSON `json:"objectives"` // JSON array of learning objectives
	Tags       datatypes.JSON `json:"tags"`       // JSON array of topic tags
	SourceURLs datatypes.JSON `json:"source_urls"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
