package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
)

type AttemptHandler struct {
	attemptSvc AttemptServiceInterface
}

func NewAttemptHandler(attemptSvc AttemptServiceInterface) *AttemptHandler {
	return &AttemptHandler{
		attemptSvc: attemptSvc,
	}
}

// @Summary Record Attempt
// @Description Record a lesson attempt and advance the learner's cursor on a passing score
// @Tags attempt
// @Accept json
// @Produce json
// @Param attemptRequest body dto.RecordAttemptRequest true "Attempt details"
// @Success 201 {object} shared.Response{data=dto.RecordAttemptResponse}
// @Router /api/v1/attempts [post]
func (h *AttemptHandler) RecordAttempt(c *fiber.Ctx) error {
	var req dto.RecordAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	result, err := h.attemptSvc.RecordAttempt(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Success", result)
}

// @Summary Attempt History
// @Description List a learner's recorded attempts, newest first
// @Tags attempt
// @Accept json
// @Produce json
// @Param learnerId path string true "Learner ID"
// @Success 200 {object} shared.Response{data=dto.AttemptCollectionResponse}
// @Router /api/v1/learners/{learnerId}/attempts [get]
func (h *AttemptHandler) GetAttempts(c *fiber.Ctx) error {
	learnerID := c.Params("learnerId")

	attempts, err := h.attemptSvc.GetLearnerAttempts(learnerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", attempts)
}
