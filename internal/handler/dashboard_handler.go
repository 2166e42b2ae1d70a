package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/service"
	"github.com/aoisorajuku/seiseki-api/internal/utils"
)

// DashboardHandler exposes the student dashboard and class overview.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new handler instance.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/students/:id/dashboard", h.studentDashboard)
	router.Get("/classes/summary", h.classSummaries)
}

func (h *DashboardHandler) studentDashboard(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "student id is required")
	}

	dashboard, err := h.service.StudentDashboard(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "生徒が見つかりません")
		}
		h.logger.Error().Err(err).Str("student_id", studentID).Msg("failed to load dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) classSummaries(c *fiber.Ctx) error {
	summaries, err := h.service.ClassSummaries(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load class summaries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load class summaries")
	}

	return utils.SendSuccess(c, "class summaries retrieved", summaries)
}
