package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-plagiarism-api/internal/dto"
	"github.com/noah-isme/gema-plagiarism-api/internal/service"
	"github.com/noah-isme/gema-plagiarism-api/internal/utils"
)

// PlagiarismHandler exposes similarity checks and their stored reports.
type PlagiarismHandler struct {
	service     service.PlagiarismService
	validator   *validator.Validate
	logger      zerolog.Logger
	checkLimits []fiber.Handler
}

// NewPlagiarismHandler builds the handler. checkLimits run in front of the
// check endpoint only, typically a rate limiter.
func NewPlagiarismHandler(service service.PlagiarismService, validate *validator.Validate, logger zerolog.Logger, checkLimits ...fiber.Handler) *PlagiarismHandler {
	return &PlagiarismHandler{
		service:     service,
		validator:   validate,
		logger:      logger.With().Str("component", "plagiarism_handler").Logger(),
		checkLimits: checkLimits,
	}
}

// Register attaches the routes to the provided router group.
func (h *PlagiarismHandler) Register(router fiber.Router) {
	checkHandlers := append(append([]fiber.Handler{}, h.checkLimits...), h.check)
	router.Post("/submissions/:id/check", checkHandlers...)
	router.Get("/submissions/:id/reports", h.reports)
}

func (h *PlagiarismHandler) check(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PlagiarismCheckRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	result, err := h.service.Check(c.UserContext(), submissionID, payload.AssignmentID, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	message := "plagiarism check completed"
	if result.Message != "" {
		message = result.Message
	}

	return utils.SendSuccess(c, message, result)
}

func (h *PlagiarismHandler) reports(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reports, err := h.service.GetReports(c.UserContext(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "plagiarism reports retrieved"
	if len(reports) == 0 {
		reports = []dto.PlagiarismReportResponse{}
		message = "submission has not been checked yet"
	}

	return utils.OK(c, reports, message, fiber.Map{"count": len(reports)})
}

func (h *PlagiarismHandler) handleError(c *fiber.Ctx, err error) error {
	if details, ok := validationDetails(err); ok {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
	}

	if errors.Is(err, service.ErrSubmissionNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "submission not found or has no content")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("plagiarism request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
