package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/ingest"
	"github.com/aoisorajuku/seiseki-api/internal/service"
	"github.com/aoisorajuku/seiseki-api/internal/utils"
)

// ImportHandler exposes the CSV upload, preview, template and export
// endpoints.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler constructs an import handler.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("component", "import_handler").Logger(),
	}
}

// Register wires the import routes.
func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
	router.Post("/preview", h.preview)
	router.Get("/history", h.history)
	router.Get("/template", h.template)
	router.Get("/export", h.export)
}

func (h *ImportHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "CSVまたはExcelファイルを選択してください")
	}

	result, err := h.service.ImportUpload(c.Context(), file)
	if err != nil {
		return h.sendImportError(c, err)
	}

	return utils.SendSuccess(c, "インポートが完了しました", result)
}

func (h *ImportHandler) preview(c *fiber.Ctx) error {
	text, err := h.documentText(c)
	if err != nil {
		return h.sendImportError(c, err)
	}

	preview, err := h.service.Preview(c.Context(), text)
	if err != nil {
		return h.sendImportError(c, err)
	}

	return utils.SendSuccess(c, "preview generated", preview)
}

func (h *ImportHandler) history(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	entries, err := h.service.History(c.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load import history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load import history")
	}

	return utils.SendSuccess(c, "history retrieved", entries)
}

func (h *ImportHandler) template(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="template.csv"`)
	return c.SendString(h.service.Template())
}

func (h *ImportHandler) export(c *fiber.Ctx) error {
	doc, err := h.service.ExportDocument(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "export failed")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="export.csv"`)
	return c.SendString(doc)
}

// documentText reads the document either from an uploaded form file or from
// the raw request body, so the preview endpoint serves both clients.
func (h *ImportHandler) documentText(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return string(c.Body()), nil
	}

	handle, err := file.Open()
	if err != nil {
		return "", err
	}
	defer handle.Close()

	buf := make([]byte, file.Size)
	n, err := handle.Read(buf)
	if err != nil && n == 0 {
		return "", err
	}
	return string(buf[:n]), nil
}

func (h *ImportHandler) sendImportError(c *fiber.Ctx, err error) error {
	var formatErr *ingest.FormatError
	var validationErr *ingest.ValidationError

	switch {
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "ファイルサイズが大きすぎます")
	case errors.Is(err, service.ErrExcelNotSupported),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, ingest.ErrEmptyDocument):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &formatErr):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error().Err(err).Msg("import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "インポートに失敗しました")
	}
}
