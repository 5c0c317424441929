package seeders

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/shared"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrackSeeder handles seeding the official starter tracks
type TrackSeeder struct {
	db *gorm.DB
}

// NewTrackSeeder creates a new track seeder
func NewTrackSeeder(db *gorm.DB) *TrackSeeder {
	return &TrackSeeder{db: db}
}

// SeedTracks inserts the starter tracks, skipping any slug that already
// exists so the catalog keeps edits made after the first run.
func (s *TrackSeeder) SeedTracks() error {
	tracks := s.getStarterTracks()

	for _, track := range tracks {
		var existing model.Track
		err := s.db.Where("slug = ?", track.Slug).First(&existing).Error
		if err == nil {
			log.Printf("Track %s already exists, skipping", track.Slug)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Printf("Error checking track %s: %v", track.Slug, err)
			return err
		}

		if err := s.db.Create(&track).Error; err != nil {
			log.Printf("Error creating track %s: %v", track.Slug, err)
			return err
		}
		log.Printf("Created track: %s", track.Slug)
	}

	log.Println("Track seeding completed successfully")
	return nil
}

func (s *TrackSeeder) getStarterTracks() []model.Track {
	now := time.Now()

	return []model.Track{
		{
			ID:    uuid.NewString(),
			Slug:  "go-fundamentals",
			Title: "Go Fundamentals",
			Sources: jsonArray([]string{
				"https://go.dev/tour/welcome/1",
				"https://go.dev/doc/effective_go",
			}),
			Category:  shared.CategoryOfficial,
			Status:    shared.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:    uuid.NewString(),
			Slug:  "sql-foundations",
			Title: "SQL Foundations",
			Sources: jsonArray([]string{
				"https://www.postgresql.org/docs/current/tutorial.html",
			}),
			Category:  shared.CategoryOfficial,
			Status:    shared.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:    uuid.NewString(),
			Slug:  "http-apis",
			Title: "Designing HTTP APIs",
			Sources: jsonArray([]string{
				"https://developer.mozilla.org/en-US/docs/Web/HTTP",
			}),
			Category:  shared.CategoryOfficial,
			Status:    shared.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func jsonArray(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
