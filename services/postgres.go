package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fall back to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "pathlight_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Error),
			TranslateError: true,
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err := ds.Migrate(); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Migrate() error {
	return ds.db.AutoMigrate(
		&model.Learner{},
		&model.Track{},
		&model.Lesson{},
		&model.Progress{},
		&model.Attempt{},
		&model.RateLimit{},
	)
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// HandleError maps storage failures onto the shared error taxonomy. Only
// outcome facts reach the log; payload contents never do.
func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *shared.AppError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		appErr = shared.NewNotFoundError(err, "Record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		appErr = shared.NewConflictError(err, "Concurrent write collision, retry the request")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		appErr = shared.NewBadRequestError(err, "Referenced record does not exist")
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			appErr = shared.NewConflictError(err, "Concurrent write collision, retry the request")
		} else {
			appErr = shared.NewInternalError(err, "Storage operation failed")
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": appErr.StatusCode,
		"error":       err.Error(),
	})

	if appErr.StatusCode >= http.StatusInternalServerError {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return appErr
}

// ==================== LEARNER METHODS ====================

// GetOrCreateLearner inserts at most one row and never updates an existing
// one; a lost insert race is indistinguishable from finding the row.
func (ds *PostgresService) GetOrCreateLearner(id string) (*model.Learner, bool, error) {
	learner := model.Learner{ID: id, CreatedAt: time.Now()}

	res := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&learner)
	if res.Error != nil {
		return nil, false, res.Error
	}

	created := res.RowsAffected > 0
	if !created {
		if err := ds.db.First(&learner, "id = ?", id).Error; err != nil {
			return nil, false, err
		}
	}

	return &learner, created, nil
}

func (ds *PostgresService) GetLearner(id string) (*model.Learner, error) {
	var learner model.Learner
	if err := ds.db.First(&learner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &learner, nil
}

// ==================== TRACK METHODS ====================

func (ds *PostgresService) GetTrackBySlug(slug string) (*model.Track, error) {
	var track model.Track
	if err := ds.db.Where("slug = ?", slug).First(&track).Error; err != nil {
		return nil, err
	}
	return &track, nil
}

func (ds *PostgresService) CreateTrack(track *model.Track) error {
	if track.ID == "" {
		track.ID = uuid.New().String()
	}
	return ds.db.Create(track).Error
}

// UpdateTrackFields applies a sparse column set; callers decide which fields
// were present in the payload.
func (ds *PostgresService) UpdateTrackFields(id string, fields map[string]interface{}) error {
	return ds.db.Model(&model.Track{}).Where("id = ?", id).Updates(fields).Error
}

func (ds *PostgresService) ListTracks(status string) ([]model.Track, error) {
	var tracks []model.Track
	q := ds.db.Order("slug")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

func (ds *PostgresService) CountLessons(trackID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.Lesson{}).Where("track_id = ?", trackID).Count(&count).Error
	return count, err
}

// ==================== LESSON METHODS ====================

func (ds *PostgresService) GetLesson(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := ds.db.First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (ds *PostgresService) GetLessonByPosition(trackID string, position int) (*model.Lesson, error) {
	var lesson model.Lesson
	err := ds.db.Where("track_id = ? AND position = ?", trackID, position).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (ds *PostgresService) GetLessonsByTrack(trackID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if err := ds.db.Where("track_id = ?", trackID).Order("position").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// UpsertLessons writes every lesson in one transaction: insert on a free
// (track, position), full overwrite on an occupied one. Any failure rolls
// the whole batch back.
func (ds *PostgresService) UpsertLessons(lessons []model.Lesson) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		for i := range lessons {
			if lessons[i].ID == "" {
				lessons[i].ID = uuid.New().String()
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "track_id"}, {Name: "position"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"title", "objectives", "tags", "source_urls", "updated_at",
				}),
			}).Create(&lessons[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ==================== PROGRESS METHODS ====================

// GetOrCreateProgress initializes the cursor at position 1 on first access
// and refreshes last_seen_at on every call.
func (ds *PostgresService) GetOrCreateProgress(learnerID, trackID string) (*model.Progress, error) {
	now := time.Now()
	progress := model.Progress{
		ID:         uuid.New().String(),
		LearnerID:  learnerID,
		TrackID:    trackID,
		Position:   1,
		LastSeenAt: now,
	}

	res := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "learner_id"}, {Name: "track_id"}},
		DoNothing: true,
	}).Create(&progress)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Re-read into a fresh struct: reusing the insert candidate would
		// carry its never-stored primary key into the query conditions.
		var stored model.Progress
		err := ds.db.Where("learner_id = ? AND track_id = ?", learnerID, trackID).
			First(&stored).Error
		if err != nil {
			return nil, err
		}
		err = ds.db.Model(&model.Progress{}).Where("id = ?", stored.ID).
			UpdateColumn("last_seen_at", now).Error
		if err != nil {
			return nil, err
		}
		stored.LastSeenAt = now
		return &stored, nil
	}

	return &progress, nil
}

// AdvanceProgress moves the cursor to target unless it is already at or past
// it. The guarded UPDATE keeps concurrent advances commutative without
// application-level locking. Returns the position after the call.
func (ds *PostgresService) AdvanceProgress(learnerID, trackID string, target int) (int, error) {
	now := time.Now()
	err := ds.db.Model(&model.Progress{}).
		Where("learner_id = ? AND track_id = ? AND position < ?", learnerID, trackID, target).
		Updates(map[string]interface{}{"position": target, "last_seen_at": now}).Error
	if err != nil {
		return 0, err
	}

	var progress model.Progress
	err = ds.db.Where("learner_id = ? AND track_id = ?", learnerID, trackID).
		First(&progress).Error
	if err != nil {
		return 0, err
	}
	return progress.Position, nil
}

// ==================== ATTEMPT METHODS ====================

func (ds *PostgresService) CreateAttempt(attempt *model.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	return ds.db.Create(attempt).Error
}

func (ds *PostgresService) GetAttemptsByLearner(learnerID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := ds.db.Where("learner_id = ?", learnerID).
		Order("created_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ==================== RATE LIMIT METHODS ====================

func (ds *PostgresService) GetRateLimit(identifier, endpointType string) (*model.RateLimit, error) {
	var rateLimit model.RateLimit
	err := ds.db.Where("identifier = ? AND endpoint_type = ?", identifier, endpointType).
		First(&rateLimit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rateLimit, nil
}

func (ds *PostgresService) SaveRateLimit(rateLimit *model.RateLimit) error {
	if rateLimit.ID == "" {
		rateLimit.ID = uuid.New().String()
	}
	return ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}, {Name: "endpoint_type"}},
		UpdateAll: true,
	}).Create(rateLimit).Error
}

func (ds *PostgresService) UpdateRateLimit(rateLimit *model.RateLimit) error {
	return ds.db.Save(rateLimit).Error
}

func (ds *PostgresService) CleanupOldRecords() error {
	cutoff := time.Now().Add(-48 * time.Hour)
	return ds.db.Where("window_start < ? AND (blocked_until IS NULL OR blocked_until < ?)",
		cutoff, time.Now()).Delete(&model.RateLimit{}).Error
}
