package dto

import "time"

// EnsureTrackRequest declares a track. Optional fields are pointers so the
// merge path can tell "omitted" apart from "sent empty": a nil pointer
// preserves the stored value, a non-nil pointer overwrites it.
type EnsureTrackRequest struct {
	Slug     string    `json:"slug" validate:"required,min=2,max=64"`
	Title    string    `json:"title" validate:"required,min=1,max=200"`
	Sources  *[]string `json:"sources,omitempty" validate:"omitempty,dive,url"`
	Category *string   `json:"category,omitempty" validate:"omitempty,oneof=official custom"`
	Status   *string   `json:"status,omitempty" validate:"omitempty,oneof=draft active archived"`
	OwnerID  *string   `json:"owner_id,omitempty" validate:"omitempty,uuid"`
}

func (r EnsureTrackRequest) Validate() error {
	return GetValidator().Struct(r)
}

type TrackResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Sources     []string  `json:"sources"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	OwnerID     *string   `json:"owner_id,omitempty"`
	LessonCount int       `json:"lesson_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EnsureTrackResponse struct {
	Track      TrackResponse `json:"track"`
	WasCreated bool          `json:"was_created"`
}

type TrackCollectionResponse struct {
	Tracks []TrackResponse `json:"tracks"`
	Total  int             `json:"total"`
}

// SeedLessonPayload fully replaces the lesson at its position; there is no
// partial merge for lessons.
type SeedLessonPayload struct {
	Position   int      `json:"position" validate:"required,gt=0"`
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	Objectives []string `json:"objectives" validate:"omitempty,dive,min=1"`
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1"`
	SourceURLs []string `json:"source_urls" validate:"omitempty,dive,url"`
}

type SeedLessonsRequest struct {
	Lessons []SeedLessonPayload `json:"lessons" validate:"required,min=1,dive"`
}

func (r SeedLessonsRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SeededLesson struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
}

type SeedLessonsResponse struct {
	TrackSlug string         `json:"track_slug"`
	Lessons   []SeededLesson `json:"lessons"`
	Count     int            `json:"count"`
}

type LessonResponse struct {
	ID         string   `json:"id"`
	TrackID    string   `json:"track_id"`
	Position   int      `json:"position"`
	Title      string   `json:"title"`
	Objectives []string `json:"objectives"`
	Tags       []string `json:"tags"`
	SourceURLs []string `json:"source_urls"`
}

type TrackDetailResponse struct {
	Track   TrackResponse  `json:"track"`
	Lessons []SeededLesson `json:"lessons"`
}
