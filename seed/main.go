package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/seed/seeders"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, tracks, lessons")
		dbPath   = flag.String("db", "", "SQLite database path (used when DATABASE_URL is unset)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := openDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.Learner{}, &model.Track{}, &model.Lesson{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete catalog seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
	case "tracks":
		log.Println("Seeding tracks only...")
		if err := mainSeeder.SeedTracksOnly(); err != nil {
			log.Fatalf("Failed to seed tracks: %v", err)
		}
	case "lessons":
		log.Println("Seeding lessons only...")
		if err := mainSeeder.SeedLessonsOnly(); err != nil {
			log.Fatalf("Failed to seed lessons: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'tracks', or 'lessons'", *seedType)
	}

	log.Println("Seeding finished")
}

func openDatabase(sqlitePath string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && sqlitePath == "" {
		log.Println("Connecting via DATABASE_URL")
		return gorm.Open(postgres.Open(dsn), config)
	}

	if sqlitePath == "" {
		sqlitePath = os.Getenv("DB_NAME")
		if sqlitePath == "" {
			sqlitePath = "pathlight.db"
		}
	}

	log.Printf("Connecting to SQLite database: %s", sqlitePath)
	return gorm.Open(sqlite.Open(sqlitePath), config)
}

func showHelp() {
	log.Println(`Catalog seeder

Usage:
  seed [flags]

Flags:
  -type string   Type of seeding: all, tracks, lessons (default "all")
  -db string     SQLite database path (overrides DATABASE_URL)
  -help          Show this message

The seeder is idempotent: tracks are keyed by slug and lessons by
(track, position), so re-running it updates rather than duplicates.`)
}
