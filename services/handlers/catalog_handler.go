package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
)

type CatalogHandler struct {
	catalogSvc CatalogServiceInterface
}

func NewCatalogHandler(catalogSvc CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogSvc: catalogSvc,
	}
}

// @Summary Ensure Track
// @Description Create a track by slug or partially update it when it already exists
// @Tags catalog
// @Accept json
// @Produce json
// @Param ensureRequest body dto.EnsureTrackRequest true "Track definition"
// @Success 200 {object} shared.Response{data=dto.EnsureTrackResponse}
// @Success 201 {object} shared.Response{data=dto.EnsureTrackResponse}
// @Security BearerAuth
// @Router /api/v1/catalog/tracks [post]
func (h *CatalogHandler) EnsureTrack(c *fiber.Ctx) error {
	var req dto.EnsureTrackRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	result, err := h.catalogSvc.EnsureTrack(req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if result.WasCreated {
		status = fiber.StatusCreated
	}

	return shared.ResponseJSON(c, status, "Success", result)
}

// @Summary List Tracks
// @Description List catalog tracks, optionally filtered by status
// @Tags catalog
// @Accept json
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, active, archived)
// @Success 200 {object} shared.Response{data=dto.TrackCollectionResponse}
// @Router /api/v1/catalog/tracks [get]
func (h *CatalogHandler) ListTracks(c *fiber.Ctx) error {
	status := c.Query("status")

	tracks, err := h.catalogSvc.ListTracks(status)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", tracks)
}

// @Summary Get Track
// @Description Get a track with its ordered lessons
// @Tags catalog
// @Accept json
// @Produce json
// @Param slug path string true "Track slug"
// @Success 200 {object} shared.Response{data=dto.TrackDetailResponse}
// @Router /api/v1/catalog/tracks/{slug} [get]
func (h *CatalogHandler) GetTrack(c *fiber.Ctx) error {
	slug := c.Params("slug")

	track, err := h.catalogSvc.GetTrackDetail(slug)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", track)
}

// @Summary Seed Lessons
// @Description Bulk upsert lessons into a track, keyed by position
// @Tags catalog
// @Accept json
// @Produce json
// @Param slug path string true "Track slug"
// @Param seedRequest body dto.SeedLessonsRequest true "Lessons to seed"
// @Success 200 {object} shared.Response{data=dto.SeedLessonsResponse}
// @Security BearerAuth
// @Router /api/v1/catalog/tracks/{slug}/lessons [post]
func (h *CatalogHandler) SeedLessons(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var req dto.SeedLessonsRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	result, err := h.catalogSvc.SeedLessons(slug, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}
