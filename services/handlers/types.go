package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pathlight-learn/pathlight_api/dto"
)

type CatalogServiceInterface interface {
	EnsureTrack(req dto.EnsureTrackRequest) (*dto.EnsureTrackResponse, error)
	ListTracks(status string) (*dto.TrackCollectionResponse, error)
	GetTrackDetail(slug string) (*dto.TrackDetailResponse, error)
	SeedLessons(trackSlug string, req dto.SeedLessonsRequest) (*dto.SeedLessonsResponse, error)
}

type LearnerServiceInterface interface {
	Resolve(candidateID string) (*dto.ResolveLearnerResponse, error)
}

type ProgressServiceInterface interface {
	GetProgressSummary(learnerID, trackSlug string) (*dto.ProgressResponse, error)
	NextLesson(learnerID, trackSlug string) (*dto.NextLessonResponse, error)
}

type AttemptServiceInterface interface {
	RecordAttempt(req dto.RecordAttemptRequest) (*dto.RecordAttemptResponse, error)
	GetLearnerAttempts(learnerID string) (*dto.AttemptCollectionResponse, error)
}

type AuthServiceInterface interface {
	RequireAuthor() fiber.Handler
}
