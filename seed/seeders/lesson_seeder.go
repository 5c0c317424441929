package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LessonSeeder handles seeding lessons into the starter tracks
type LessonSeeder struct {
	db *gorm.DB
}

// NewLessonSeeder creates a new lesson seeder
func NewLessonSeeder(db *gorm.DB) *LessonSeeder {
	return &LessonSeeder{db: db}
}

type lessonSpec struct {
	Position   int
	Title      string
	Objectives []string
	Tags       []string
	SourceURLs []string
}

// SeedLessons upserts the starter lessons keyed by (track, position), so
// rerunning refreshes titles and metadata without duplicating rows.
func (s *LessonSeeder) SeedLessons() error {
	for slug, specs := range s.getStarterLessons() {
		var track model.Track
		if err := s.db.Where("slug = ?", slug).First(&track).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				log.Printf("Track %s not found, skipping its lessons", slug)
				continue
			}
			return err
		}

		now := time.Now()
		lessons := make([]model.Lesson, 0, len(specs))
		for _, spec := range specs {
			lessons = append(lessons, model.Lesson{
				ID:         uuid.NewString(),
				TrackID:    track.ID,
				Position:   spec.Position,
				Title:      spec.Title,
				Objectives: jsonArray(spec.Objectives),
				Tags:       jsonArray(spec.Tags),
				SourceURLs: jsonArray(spec.SourceURLs),
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}

		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "track_id"}, {Name: "position"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "objectives", "tags", "source_urls", "updated_at",
			}),
		}).Create(&lessons).Error
		if err != nil {
			log.Printf("Error seeding lessons for track %s: %v", slug, err)
			return err
		}

		log.Printf("Seeded %d lessons into track %s", len(lessons), slug)
	}

	log.Println("Lesson seeding completed successfully")
	return nil
}

func (s *LessonSeeder) getStarterLessons() map[string][]lessonSpec {
	return map[string][]lessonSpec{
		"go-fundamentals": {
			{
				Position:   1,
				Title:      "Packages, Variables, and Functions",
				Objectives: []string{"Declare variables and constants", "Write and call functions"},
				Tags:       []string{"syntax", "basics"},
				SourceURLs: []string{"https://go.dev/tour/basics/1"},
			},
			{
				Position:   2,
				Title:      "Flow Control",
				Objectives: []string{"Use for, if, and switch", "Understand defer"},
				Tags:       []string{"control-flow"},
				SourceURLs: []string{"https://go.dev/tour/flowcontrol/1"},
			},
			{
				Position:   3,
				Title:      "Structs, Slices, and Maps",
				Objectives: []string{"Model data with structs", "Work with slices and maps"},
				Tags:       []string{"data-structures"},
				SourceURLs: []string{"https://go.dev/tour/moretypes/1"},
			},
			{
				Position:   4,
				Title:      "Methods and Interfaces",
				Objectives: []string{"Attach methods to types", "Satisfy interfaces implicitly"},
				Tags:       []string{"interfaces"},
				SourceURLs: []string{"https://go.dev/tour/methods/1"},
			},
			{
				Position:   5,
				Title:      "Goroutines and Channels",
				Objectives: []string{"Launch goroutines", "Coordinate with channels"},
				Tags:       []string{"concurrency"},
				SourceURLs: []string{"https://go.dev/tour/concurrency/1"},
			},
		},
		"sql-foundations": {
			{
				Position:   1,
				Title:      "Tables and Simple Queries",
				Objectives: []string{"Create tables", "Filter rows with WHERE"},
				Tags:       []string{"ddl", "select"},
				SourceURLs: []string{"https://www.postgresql.org/docs/current/tutorial-table.html"},
			},
			{
				Position:   2,
				Title:      "Joins",
				Objectives: []string{"Combine tables with inner and outer joins"},
				Tags:       []string{"joins"},
				SourceURLs: []string{"https://www.postgresql.org/docs/current/tutorial-join.html"},
			},
			{
				Position:   3,
				Title:      "Aggregation and Grouping",
				Objectives: []string{"Summarize data with GROUP BY and aggregates"},
				Tags:       []string{"aggregation"},
				SourceURLs: []string{"https://www.postgresql.org/docs/current/tutorial-agg.html"},
			},
		},
	}
}
