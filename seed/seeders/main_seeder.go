package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in dependency order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting catalog seeding...")

	trackSeeder := NewTrackSeeder(s.db)
	if err := trackSeeder.SeedTracks(); err != nil {
		log.Printf("Track seeding failed: %v", err)
		return err
	}

	lessonSeeder := NewLessonSeeder(s.db)
	if err := lessonSeeder.SeedLessons(); err != nil {
		log.Printf("Lesson seeding failed: %v", err)
		return err
	}

	log.Println("Catalog seeding completed successfully")
	return nil
}

// SeedTracksOnly seeds only tracks
func (s *MainSeeder) SeedTracksOnly() error {
	trackSeeder := NewTrackSeeder(s.db)
	return trackSeeder.SeedTracks()
}

// SeedLessonsOnly seeds only lessons; the tracks they belong to must exist
func (s *MainSeeder) SeedLessonsOnly() error {
	lessonSeeder := NewLessonSeeder(s.db)
	return lessonSeeder.SeedLessons()
}
