package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogService owns tracks and lessons. Declarations are idempotent:
// EnsureTrack merges only the fields the payload carried, SeedLessons fully
// replaces each (track, position) it names.
type CatalogService struct {
	appContext.DefaultService

	sqlSvc     *PostgresService
	learnerSvc *LearnerService
	cacheSvc   *RedisService
}

const CATALOG_SVC = "catalog_svc"

const (
	trackListCacheKey   = "tracks:all"
	trackCacheKeyPrefix = "track:"
)

func (svc CatalogService) Id() string {
	return CATALOG_SVC
}

func (svc *CatalogService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *CatalogService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.learnerSvc = svc.Service(LEARNER_SVC).(*LearnerService)
	if cacheSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok {
		svc.cacheSvc = cacheSvc
	}
	return nil
}

// ==================== TRACK METHODS ====================

// EnsureTrack creates the track on first declaration and partially merges on
// every later one. A nil optional preserves the stored value; a non-nil one
// overwrites it, empty values included.
func (svc *CatalogService) EnsureTrack(req dto.EnsureTrackRequest) (*dto.EnsureTrackResponse, error) {
	slug := normalizeSlug(req.Slug)
	if len(slug) < 2 {
		return nil, shared.NewBadRequestError(
			fmt.Errorf("slug %q too short after normalization", req.Slug), "Track slug is too short")
	}

	ownerID, err := svc.resolveOwner(req.OwnerID)
	if err != nil {
		return nil, err
	}

	track, err := svc.sqlSvc.GetTrackBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, createErr := svc.insertTrack(slug, req, ownerID)
		if createErr == nil {
			svc.invalidateTrackCache(slug)
			trackEnsuredTotal.WithLabelValues("created").Inc()
			return &dto.EnsureTrackResponse{Track: svc.mapTrackToResponse(created), WasCreated: true}, nil
		}

		if appErr, ok := shared.GetAppError(createErr); !ok || appErr.StatusCode != 409 {
			return nil, createErr
		}

		// Lost a first-insert race: the slug exists now, fall through to
		// the read-then-merge path.
		track, err = svc.sqlSvc.GetTrackBySlug(slug)
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	merged, err := svc.mergeTrack(track, req, ownerID)
	if err != nil {
		return nil, err
	}

	svc.invalidateTrackCache(slug)
	trackEnsuredTotal.WithLabelValues("updated").Inc()
	return &dto.EnsureTrackResponse{Track: svc.mapTrackToResponse(merged), WasCreated: false}, nil
}

func (svc *CatalogService) insertTrack(slug string, req dto.EnsureTrackRequest, ownerID *string) (*model.Track, error) {
	track := &model.Track{
		Slug:     slug,
		Title:    req.Title,
		Sources:  toJSONArray(nil),
		Category: shared.CategoryCustom,
		Status:   shared.StatusDraft,
		OwnerID:  ownerID,
	}
	if req.Sources != nil {
		track.Sources = toJSONArray(*req.Sources)
	}
	if req.Category != nil {
		track.Category = *req.Category
	}
	if req.Status != nil {
		track.Status = *req.Status
	}

	if err := svc.sqlSvc.CreateTrack(track); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"slug": slug, "created": true}).Info("Track ensured")
	return track, nil
}

func (svc *CatalogService) mergeTrack(track *model.Track, req dto.EnsureTrackRequest, ownerID *string) (*model.Track, error) {
	fields := map[string]interface{}{
		"title":      req.Title,
		"updated_at": time.Now(),
	}
	if req.Sources != nil {
		fields["sources"] = toJSONArray(*req.Sources)
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.OwnerID != nil {
		fields["owner_id"] = ownerID
	}

	if err := svc.sqlSvc.UpdateTrackFields(track.ID, fields); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	updated, err := svc.sqlSvc.GetTrackBySlug(track.Slug)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"slug": track.Slug, "created": false}).Info("Track ensured")
	return updated, nil
}

func (svc *CatalogService) resolveOwner(ownerID *string) (*string, error) {
	if ownerID == nil || *ownerID == "" {
		return nil, nil
	}

	// The owner may not exist yet as a row; the resolver creates it lazily.
	resolved, err := svc.learnerSvc.Resolve(*ownerID)
	if err != nil {
		return nil, err
	}
	return &resolved.LearnerID, nil
}

func (svc *CatalogService) ListTracks(status string) (*dto.TrackCollectionResponse, error) {
	if status == "" && svc.cacheSvc != nil {
		var cached dto.TrackCollectionResponse
		if found, err := svc.cacheSvc.GetJSON(context.Background(), trackListCacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	tracks, err := svc.sqlSvc.ListTracks(status)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	responses := make([]dto.TrackResponse, len(tracks))
	for i := range tracks {
		responses[i] = svc.mapTrackToResponse(&tracks[i])
	}

	result := &dto.TrackCollectionResponse{Tracks: responses, Total: len(responses)}

	if status == "" && svc.cacheSvc != nil {
		if err := svc.cacheSvc.Set(context.Background(), trackListCacheKey, result, shared.TrackCacheTTL); err != nil {
			log.Printf("Failed to cache track list: %v", err)
		}
	}

	return result, nil
}

func (svc *CatalogService) GetTrackDetail(slug string) (*dto.TrackDetailResponse, error) {
	normalized := normalizeSlug(slug)
	cacheKey := trackCacheKeyPrefix + normalized

	if svc.cacheSvc != nil {
		var cached dto.TrackDetailResponse
		if found, err := svc.cacheSvc.GetJSON(context.Background(), cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	track, err := svc.sqlSvc.GetTrackBySlug(normalized)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	lessons, err := svc.sqlSvc.GetLessonsByTrack(track.ID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	summaries := make([]dto.SeededLesson, len(lessons))
	for i, lesson := range lessons {
		summaries[i] = dto.SeededLesson{ID: lesson.ID, Position: lesson.Position, Title: lesson.Title}
	}

	detail := &dto.TrackDetailResponse{
		Track:   svc.mapTrackToResponse(track),
		Lessons: summaries,
	}

	if svc.cacheSvc != nil {
		if err := svc.cacheSvc.Set(context.Background(), cacheKey, detail, shared.TrackCacheTTL); err != nil {
			log.Printf("Failed to cache track detail for %s: %v", normalized, err)
		}
	}

	return detail, nil
}

func (svc *CatalogService) mapTrackToResponse(track *model.Track) dto.TrackResponse {
	count, err := svc.sqlSvc.CountLessons(track.ID)
	if err != nil {
		log.Printf("Failed to count lessons for track %s: %v", track.Slug, err)
	}

	return dto.TrackResponse{
		ID:          track.ID,
		Slug:        track.Slug,
		Title:       track.Title,
		Sources:     fromJSONArray(track.Sources),
		Category:    track.Category,
		Status:      track.Status,
		OwnerID:     track.OwnerID,
		LessonCount: int(count),
		CreatedAt:   track.CreatedAt,
		UpdatedAt:   track.UpdatedAt,
	}
}

// ==================== LESSON METHODS ====================

// SeedLessons upserts a whole curriculum in one all-or-nothing transaction.
// Unlike EnsureTrack there is no partial merge: an occupied position is
// fully overwritten.
func (svc *CatalogService) SeedLessons(trackSlug string, req dto.SeedLessonsRequest) (*dto.SeedLessonsResponse, error) {
	slug := normalizeSlug(trackSlug)

	track, err := svc.sqlSvc.GetTrackBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(
			fmt.Errorf("track %q not found", slug), "Track not found, ensure it before seeding lessons")
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	seen := make(map[int]bool, len(req.Lessons))
	for _, payload := range req.Lessons {
		if seen[payload.Position] {
			return nil, shared.NewBadRequestError(
				fmt.Errorf("duplicate position %d", payload.Position), "Duplicate lesson position in request")
		}
		seen[payload.Position] = true
	}

	now := time.Now()
	lessons := make([]model.Lesson, len(req.Lessons))
	positions := make([]int, len(req.Lessons))
	for i, payload := range req.Lessons {
		positions[i] = payload.Position
		lessons[i] = model.Lesson{
			TrackID:    track.ID,
			Position:   payload.Position,
			Title:      payload.Title,
			Objectives: toJSONArray(payload.Objectives),
			Tags:       toJSONArray(payload.Tags),
			SourceURLs: toJSONArray(payload.SourceURLs),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	if err := svc.sqlSvc.UpsertLessons(lessons); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	// Re-read so overwritten positions report their stored ids, not the
	// ids generated for the insert attempt.
	stored, err := svc.sqlSvc.GetLessonsByTrack(track.ID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	byPosition := make(map[int]model.Lesson, len(stored))
	for _, lesson := range stored {
		byPosition[lesson.Position] = lesson
	}

	seeded := make([]dto.SeededLesson, 0, len(positions))
	for _, position := range positions {
		lesson := byPosition[position]
		seeded = append(seeded, dto.SeededLesson{ID: lesson.ID, Position: lesson.Position, Title: lesson.Title})
	}

	svc.invalidateTrackCache(slug)
	lessonsSeededTotal.Add(float64(len(seeded)))
	log.WithFields(log.Fields{"slug": slug, "count": len(seeded)}).Info("Lessons seeded")

	return &dto.SeedLessonsResponse{
		TrackSlug: slug,
		Lessons:   seeded,
		Count:     len(seeded),
	}, nil
}

func (svc *CatalogService) invalidateTrackCache(slug string) {
	if svc.cacheSvc == nil {
		return
	}
	err := svc.cacheSvc.Delete(context.Background(), trackListCacheKey, trackCacheKeyPrefix+slug)
	if err != nil {
		log.Printf("Failed to invalidate track cache for %s: %v", slug, err)
	}
}

// ==================== HELPERS ====================

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func toJSONArray(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

func fromJSONArray(data datatypes.JSON) []string {
	if len(data) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		log.Printf("Failed to unmarshal JSON array column: %v", err)
		return []string{}
	}
	return values
}
