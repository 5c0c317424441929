package services

import (
	"fmt"
	"testing"

	"github.com/pathlight-learn/pathlight_api/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema. The
// DSN is keyed by test name so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Learner{},
		&model.Track{},
		&model.Lesson{},
		&model.Progress{},
		&model.Attempt{},
		&model.RateLimit{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

type testServices struct {
	sql      *PostgresService
	learner  *LearnerService
	catalog  *CatalogService
	progress *ProgressService
	attempt  *AttemptService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	sqlSvc := &PostgresService{db: newTestDB(t)}
	learnerSvc := &LearnerService{sqlSvc: sqlSvc}
	progressSvc := &ProgressService{sqlSvc: sqlSvc, learnerSvc: learnerSvc}

	return &testServices{
		sql:      sqlSvc,
		learner:  learnerSvc,
		catalog:  &CatalogService{sqlSvc: sqlSvc, learnerSvc: learnerSvc},
		progress: progressSvc,
		attempt:  &AttemptService{sqlSvc: sqlSvc, learnerSvc: learnerSvc, progressSvc: progressSvc},
	}
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}
