package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/handler"
	"github.com/aoisorajuku/seiseki-api/internal/models"
)

type stubImportService struct {
	result dto.ImportResult
}

func (s stubImportService) ImportDocument(context.Context, string, string) (dto.ImportResult, error) {
	return s.result, nil
}

func (s stubImportService) ImportSectioned(context.Context, string, string) (dto.ImportResult, error) {
	return s.result, nil
}

func (s stubImportService) ImportFlat(context.Context, string, string) (dto.ImportResult, error) {
	return s.result, nil
}

func (s stubImportService) ImportUpload(context.Context, *multipart.FileHeader) (dto.ImportResult, error) {
	return s.result, nil
}

func (s stubImportService) Preview(context.Context, string) (dto.ImportPreview, error) {
	return dto.ImportPreview{}, nil
}

func (s stubImportService) History(context.Context, int) ([]models.ImportRecord, error) {
	return nil, nil
}

func (s stubImportService) Template() string { return "" }

func (s stubImportService) ExportDocument(context.Context) (string, error) { return "", nil }

func TestImportResultContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "import_result.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	svc := stubImportService{result: dto.ImportResult{
		Format:          models.ImportFormatSectioned,
		StudentsAdded:   2,
		StudentsUpdated: 1,
		GradesAppended:  3,
		GradesDropped:   1,
		SkippedRows:     2,
	}}
	importHandler := handler.NewImportHandler(svc, zerolog.Nop())

	app := fiber.New()
	importHandler.Register(app.Group("/api/v1/imports"))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("csv"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.NoError(t, schema.Validate(payload))
}
