package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aoisorajuku/seiseki-api/internal/config"
	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/handler"
	"github.com/aoisorajuku/seiseki-api/internal/middleware"
	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
	"github.com/aoisorajuku/seiseki-api/internal/router"
	"github.com/aoisorajuku/seiseki-api/internal/service"
)

const e2eDoc = `【生徒データ】セクション
生徒コード,教室,氏名,シメイ,性,高校,学科,学校クラス,部活,志望大学,志望学部
s001,本校,田中太郎,たなかたろう,男,県立第一高校,理系,3-A,英語部,東京大学,工学部
s002,本校,鈴木花子,すずきはなこ,女,県立女子高校,文系,3-B,演劇部,京都大学,文学部

【チェックテスト成績】セクション
氏名,授業回,授業内容,日付,授業内容の理解,初見問題,文法語法,単語,リスニング,合計
田中太郎,1,文法基礎,2026-02-02,18,16,19,17,15,85
鈴木花子,1,文法基礎,2026-02-02,20,19,20,19,18,96
`

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ImportRecord{}))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	staticDocs := repository.NewStaticDocuments(t.TempDir(), logger)
	recordRepo := repository.NewRecordRepository(redisClient, staticDocs, logger)
	importLogRepo := repository.NewImportLogRepository(db)

	importService := service.NewImportService(recordRepo, importLogRepo, "class001", 5, logger)
	dashboardService := service.NewDashboardService(recordRepo, nil, 0, logger)
	studentService := service.NewStudentService(recordRepo, logger)
	gradeService := service.NewGradeService(recordRepo, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Seiseki API Test", JWTSecret: "secret"}, router.Dependencies{
		ImportHandler:    handler.NewImportHandler(importService, logger),
		DashboardHandler: handler.NewDashboardHandler(dashboardService, logger),
		StudentHandler:   handler.NewStudentHandler(studentService, logger),
		GradeHandler:     handler.NewGradeHandler(gradeService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", "admin")
			return c.Next()
		},
	})

	return app
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func uploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportEndToEndFlow(t *testing.T) {
	app := setupApp(t)

	// Step 1: upload a sectioned CSV document
	resp, err := app.Test(uploadRequest(t, "/api/v1/imports", "upload.csv", []byte(e2eDoc)))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var uploadResponse struct {
		Data dto.ImportResult `json:"data"`
	}
	decode(t, resp, &uploadResponse)
	require.Equal(t, models.ImportFormatSectioned, uploadResponse.Data.Format)
	require.Equal(t, 2, uploadResponse.Data.StudentsAdded)
	require.Equal(t, 2, uploadResponse.Data.GradesAppended)

	// Step 2: the roster lists both students
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listResponse struct {
		Data []dto.StudentListEntry `json:"data"`
	}
	decode(t, resp, &listResponse)
	require.Len(t, listResponse.Data, 2)
	require.Equal(t, "s1", listResponse.Data[0].ID)

	// Step 3: the dashboard resolves the imported grades
	req = httptest.NewRequest(http.MethodGet, "/api/v1/students/s1/dashboard", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dashboardResponse struct {
		Data dto.StudentDashboardResponse `json:"data"`
	}
	decode(t, resp, &dashboardResponse)
	require.Equal(t, "田中太郎", dashboardResponse.Data.StudentName)
	require.Len(t, dashboardResponse.Data.Grades, 1)
	require.Equal(t, 85, dashboardResponse.Data.Grades[0].Score)
	require.Equal(t, 100, dashboardResponse.Data.Grades[0].MaxScore)

	// Step 4: record a manual grade
	payload, err := json.Marshal(dto.GradeEntryRequest{
		StudentID: "s1",
		ClassID:   "class001",
		Date:      "2026-02-09",
		TestName:  "第2回チェックテスト",
		Score:     45,
		MaxScore:  50,
	})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var gradeResponse struct {
		Data dto.GradeEntryResponse `json:"data"`
	}
	decode(t, resp, &gradeResponse)
	require.Equal(t, "g3", gradeResponse.Data.GradeID)
	require.Equal(t, 2, gradeResponse.Data.LessonNumber)

	// Step 5: recent grades show the manual entry first
	req = httptest.NewRequest(http.MethodGet, "/api/v1/grades/recent", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recentResponse struct {
		Data []dto.RecentGrade `json:"data"`
	}
	decode(t, resp, &recentResponse)
	require.Len(t, recentResponse.Data, 3)
	require.Equal(t, 45, recentResponse.Data[0].Score)

	// Step 6: the audit log recorded the upload
	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports/history", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var historyResponse struct {
		Data []models.ImportRecord `json:"data"`
	}
	decode(t, resp, &historyResponse)
	require.Len(t, historyResponse.Data, 1)
	require.Equal(t, "upload.csv", historyResponse.Data[0].FileName)

	// Step 7: export round-trips the store as a sectioned document
	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports/export", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Contains(t, string(exported), "【生徒データ】セクション")
	require.Contains(t, string(exported), "田中太郎")
}

func TestImportEndToEndRejectsForNonAdmin(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	logger := zerolog.New(io.Discard)
	staticDocs := repository.NewStaticDocuments(t.TempDir(), logger)
	recordRepo := repository.NewRecordRepository(redisClient, staticDocs, logger)
	importService := service.NewImportService(recordRepo, nil, "class001", 5, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Seiseki API Test", JWTSecret: "secret"}, router.Dependencies{
		ImportHandler: handler.NewImportHandler(importService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(2))
			c.Locals("user_role", "student")
			return c.Next()
		},
	})

	resp, err := app.Test(uploadRequest(t, "/api/v1/imports", "upload.csv", []byte(e2eDoc)))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
