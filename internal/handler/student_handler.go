package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/service"
	"github.com/aoisorajuku/seiseki-api/internal/utils"
)

// StudentHandler exposes the roster listing.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires the student routes.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load students")
	}

	return utils.SendSuccess(c, "students retrieved", students)
}
