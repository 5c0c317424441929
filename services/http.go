package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	"github.com/pathlight-learn/pathlight_api/services/handlers"
	"github.com/pathlight-learn/pathlight_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc      *AuthService
	learnerSvc   *LearnerService
	catalogSvc   *CatalogService
	progressSvc  *ProgressService
	attemptSvc   *AttemptService
	rateLimitSvc *RateLimitService
	monitorSvc   *MonitoringService

	catalogHandler *handlers.CatalogHandler
	learnerHandler *handlers.LearnerHandler
	attemptHandler *handlers.AttemptHandler

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.learnerSvc = svc.Service(LEARNER_SVC).(*LearnerService)
	svc.catalogSvc = svc.Service(CATALOG_SVC).(*CatalogService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.attemptSvc = svc.Service(ATTEMPT_SVC).(*AttemptService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.catalogHandler = handlers.NewCatalogHandler(svc.catalogSvc)
	svc.learnerHandler = handlers.NewLearnerHandler(svc.learnerSvc, svc.progressSvc)
	svc.attemptHandler = handlers.NewAttemptHandler(svc.attemptSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.errorHandler,
		JSONEncoder:  shared.JSONEncoder,
		JSONDecoder:  shared.JSONDecoder,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After",
	}))
	app.Use(MonitoringMiddleware(svc.monitorSvc))

	svc.setupRoutes(app)

	svc.server = app

	log.WithField("port", svc.port).Info("HTTP server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) setupRoutes(app *fiber.App) {
	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	general := svc.rateLimitSvc.Tier(TierGeneral)
	mutation := svc.rateLimitSvc.Tier(TierCatalogMutation)

	catalog := v1.Group("/catalog")
	catalog.Get("/tracks", general, svc.catalogHandler.ListTracks)
	catalog.Get("/tracks/:slug", general, svc.catalogHandler.GetTrack)
	catalog.Post("/tracks", mutation, svc.authSvc.RequireAuthor(), svc.catalogHandler.EnsureTrack)
	catalog.Post("/tracks/:slug/lessons", mutation, svc.authSvc.RequireAuthor(), svc.catalogHandler.SeedLessons)

	learners := v1.Group("/learners", general)
	learners.Post("/resolve", svc.learnerHandler.Resolve)
	learners.Get("/:learnerId/tracks/:slug/progress", svc.learnerHandler.GetProgress)
	learners.Get("/:learnerId/tracks/:slug/next", svc.learnerHandler.NextLesson)
	learners.Get("/:learnerId/attempts", svc.attemptHandler.GetAttempts)

	v1.Post("/attempts", general, svc.attemptHandler.RecordAttempt)

	admin := v1.Group("/admin", svc.authSvc.RequireAuthor())
	admin.Get("/rate-limits/stats", svc.rateLimitSvc.GetRateLimitStats())
	admin.Delete("/rate-limits/:identifier/:tier", svc.rateLimitSvc.ResetRateLimit())

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
