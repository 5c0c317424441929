package shared

import "time"

const (
	LearnerID = "learner_id"
	CallerID  = "caller_id"

	CategoryOfficial = "official"
	CategoryCustom   = "custom"

	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"

	AttemptKindQuiz      = "quiz"
	AttemptKindChallenge = "challenge"
	AttemptKindProject   = "project"

	// Minimum percentage an attempt must reach before the cursor advances.
	PassThresholdPercent = 70.0

	TrackCacheTTL = 5 * time.Minute
)
