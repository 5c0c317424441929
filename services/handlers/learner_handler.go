package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
)

type LearnerHandler struct {
	learnerSvc  LearnerServiceInterface
	progressSvc ProgressServiceInterface
}

func NewLearnerHandler(learnerSvc LearnerServiceInterface, progressSvc ProgressServiceInterface) *LearnerHandler {
	return &LearnerHandler{
		learnerSvc:  learnerSvc,
		progressSvc: progressSvc,
	}
}

// @Summary Resolve Learner
// @Description Mint a new learner identity or confirm an existing one
// @Tags learner
// @Accept json
// @Produce json
// @Param resolveRequest body dto.ResolveLearnerRequest true "Optional existing learner id"
// @Success 200 {object} shared.Response{data=dto.ResolveLearnerResponse}
// @Router /api/v1/learners/resolve [post]
func (h *LearnerHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveLearnerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request")
		}
	}

	result, err := h.learnerSvc.Resolve(req.LearnerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Get Progress
// @Description Get a learner's cursor and completion summary for a track
// @Tags learner
// @Accept json
// @Produce json
// @Param learnerId path string true "Learner ID"
// @Param slug path string true "Track slug"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/learners/{learnerId}/tracks/{slug}/progress [get]
func (h *LearnerHandler) GetProgress(c *fiber.Ctx) error {
	learnerID := c.Params("learnerId")
	slug := c.Params("slug")

	progress, err := h.progressSvc.GetProgressSummary(learnerID, slug)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Next Lesson
// @Description Get the lesson at the learner's current cursor, if one is seeded
// @Tags learner
// @Accept json
// @Produce json
// @Param learnerId path string true "Learner ID"
// @Param slug path string true "Track slug"
// @Success 200 {object} shared.Response{data=dto.NextLessonResponse}
// @Router /api/v1/learners/{learnerId}/tracks/{slug}/next [get]
func (h *LearnerHandler) NextLesson(c *fiber.Ctx) error {
	learnerID := c.Params("learnerId")
	slug := c.Params("slug")

	next, err := h.progressSvc.NextLesson(learnerID, slug)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", next)
}
