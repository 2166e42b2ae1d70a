package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/service"
	"github.com/aoisorajuku/seiseki-api/internal/utils"
)

// GradeHandler exposes manual grade entry and the recent-grades listing.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register wires the grade routes.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("", h.add)
	router.Get("/recent", h.recent)
}

func (h *GradeHandler) add(c *fiber.Ctx) error {
	var req dto.GradeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Add(c.Context(), req)
	if err != nil {
		var vErrs validator.ValidationErrors
		switch {
		case errors.As(err, &vErrs):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrScoreExceedsMax):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "生徒が見つかりません")
		default:
			h.logger.Error().Err(err).Msg("failed to record grade")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record grade")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "成績を登録しました", response)
}

func (h *GradeHandler) recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	recent, err := h.service.Recent(c.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load recent grades")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load recent grades")
	}

	return utils.SendSuccess(c, "recent grades retrieved", recent)
}
