package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/ingest"
	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/observability"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrExcelNotSupported asks the uploader to re-save the workbook as CSV.
	ErrExcelNotSupported = errors.New("Excelファイルは、CSV形式に保存してからアップロードしてください")
	// ErrUnsupportedFileType indicates the payload is not delimited text.
	ErrUnsupportedFileType = errors.New("CSVまたはExcelファイルを選択してください")
)

// Sectioned-path defaults. The source document carries no maximums, so every
// appended grade gets these fixed values; a known fidelity gap kept for
// compatibility with the existing store.
var defaultMaxScores = models.ScoreSet{
	Comprehension:  20,
	UnseenProblems: 20,
	Grammar:        20,
	Vocabulary:     20,
	Listening:      20,
	Total:          100,
}

const previewLimit = 5

// ImportService is the merge/upsert engine: it reconciles parsed upload
// documents against the record store and persists the result wholesale.
type ImportService interface {
	// ImportDocument routes a document to the sectioned or flat path. A
	// sectioned parse that finds no student section identifies a flat
	// document.
	ImportDocument(ctx context.Context, fileName, text string) (dto.ImportResult, error)
	ImportSectioned(ctx context.Context, fileName, text string) (dto.ImportResult, error)
	ImportFlat(ctx context.Context, fileName, text string) (dto.ImportResult, error)
	// ImportUpload guards a multipart upload (size, file type) before
	// handing the text to ImportDocument.
	ImportUpload(ctx context.Context, file *multipart.FileHeader) (dto.ImportResult, error)
	// Preview parses without persisting.
	Preview(ctx context.Context, text string) (dto.ImportPreview, error)
	History(ctx context.Context, limit int) ([]models.ImportRecord, error)
	Template() string
	ExportDocument(ctx context.Context) (string, error)
}

type importService struct {
	records        repository.RecordRepository
	auditLog       repository.ImportLogRepository
	defaultClassID string
	maxUploadBytes int64
	sanitizer      *bluemonday.Policy
	logger         zerolog.Logger
	tracer         trace.Tracer
	now            func() time.Time
}

// NewImportService constructs the import engine.
func NewImportService(records repository.RecordRepository, auditLog repository.ImportLogRepository, defaultClassID string, maxUploadMB int, logger zerolog.Logger) ImportService {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	if defaultClassID == "" {
		defaultClassID = "class001"
	}
	return &importService{
		records:        records,
		auditLog:       auditLog,
		defaultClassID: defaultClassID,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		sanitizer:      bluemonday.StrictPolicy(),
		logger:         logger.With().Str("component", "import_service").Logger(),
		tracer:         otel.Tracer("github.com/aoisorajuku/seiseki-api/internal/service/import"),
		now:            time.Now,
	}
}

func (s *importService) ImportDocument(ctx context.Context, fileName, text string) (dto.ImportResult, error) {
	result, err := s.ImportSectioned(ctx, fileName, text)

	var formatErr *ingest.FormatError
	if errors.As(err, &formatErr) {
		return s.ImportFlat(ctx, fileName, text)
	}

	return result, err
}

func (s *importService) ImportSectioned(ctx context.Context, fileName, text string) (dto.ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "import.sectioned")
	defer span.End()
	start := s.now()

	doc, err := ingest.ParseSectioned(text)
	if err != nil {
		// Format detection is the caller's concern; only genuine failures
		// count as failed imports.
		var formatErr *ingest.FormatError
		if !errors.As(err, &formatErr) {
			observability.Imports().WithLabelValues(models.ImportFormatSectioned, "failed").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return dto.ImportResult{}, err
	}

	students, err := s.records.Students(ctx)
	if err != nil {
		return dto.ImportResult{}, err
	}
	grades, err := s.records.Grades(ctx)
	if err != nil {
		return dto.ImportResult{}, err
	}

	result := dto.ImportResult{
		Format:      models.ImportFormatSectioned,
		SkippedRows: doc.SkippedRows,
	}

	byCode := make(map[string]int, len(students))
	for i, student := range students {
		if student.StudentCode != "" {
			byCode[student.StudentCode] = i
		}
	}

	maxID := maxIDSuffix("s", studentIDs(students))
	today := s.today()

	for _, row := range doc.Students {
		if idx, ok := byCode[row.StudentCode]; ok && row.StudentCode != "" {
			applyStudentRow(&students[idx], row)
			result.StudentsUpdated++
			continue
		}

		maxID++
		students = append(students, models.Student{
			ID:               fmt.Sprintf("s%d", maxID),
			StudentCode:      row.StudentCode,
			Name:             row.Name,
			NameKana:         row.NameKana,
			Gender:           row.Gender,
			HighSchool:       row.HighSchool,
			Classroom:        row.Classroom,
			CourseSubject:    row.CourseSubject,
			SchoolClass:      row.SchoolClass,
			Club:             row.Club,
			TargetUniversity: row.TargetUniversity,
			TargetDept:       row.TargetDept,
			ClassID:          s.defaultClassID,
			JoinDate:         today,
		})
		if row.StudentCode != "" {
			byCode[row.StudentCode] = len(students) - 1
		}
		result.StudentsAdded++
	}

	// Grade rows resolve against the already-updated roster. A row whose
	// name matches no student is dropped without consuming an id.
	byName := make(map[string]string, len(students))
	for _, student := range students {
		if _, ok := byName[student.Name]; !ok {
			byName[student.Name] = student.ID
		}
	}

	gradeMaxID := maxIDSuffix("g", gradeIDs(grades))

	for _, row := range doc.Grades {
		studentID, ok := byName[row.Name]
		if !ok {
			result.GradesDropped++
			continue
		}

		gradeMaxID++
		scores := models.ScoreSet{
			Comprehension:  row.Comprehension,
			UnseenProblems: row.UnseenProblems,
			Grammar:        row.Grammar,
			Vocabulary:     row.Vocabulary,
			Listening:      row.Listening,
			Total:          row.Total,
		}
		maxScores := defaultMaxScores
		grades = append(grades, models.Grade{
			ID:            fmt.Sprintf("g%d", gradeMaxID),
			StudentID:     studentID,
			ClassID:       s.defaultClassID,
			Date:          row.Date,
			LessonNumber:  row.LessonNumber,
			LessonContent: row.LessonContent,
			Scores:        &scores,
			MaxScores:     &maxScores,
		})
		result.GradesAppended++
	}

	if err := s.records.SaveRecords(ctx, students, grades); err != nil {
		observability.Imports().WithLabelValues(models.ImportFormatSectioned, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return dto.ImportResult{}, err
	}

	s.finish(ctx, span, fileName, result, start)
	return result, nil
}

func (s *importService) ImportFlat(ctx context.Context, fileName, text string) (dto.ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "import.flat")
	defer span.End()
	start := s.now()

	rows, err := ingest.ParseFlat(text)
	if err != nil {
		observability.Imports().WithLabelValues(models.ImportFormatFlat, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return dto.ImportResult{}, err
	}

	if err := ingest.ValidateRoster(rows); err != nil {
		observability.Imports().WithLabelValues(models.ImportFormatFlat, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ImportResult{}, err
	}

	students, err := s.records.Students(ctx)
	if err != nil {
		return dto.ImportResult{}, err
	}
	grades, err := s.records.Grades(ctx)
	if err != nil {
		return dto.ImportResult{}, err
	}

	result := dto.ImportResult{Format: models.ImportFormatFlat}

	// The flat path never upserts: every row appends a new record. This is
	// the documented legacy workflow, distinct from the sectioned path.
	maxID := maxIDSuffix("s", studentIDs(students))
	today := s.today()

	for _, row := range rows {
		maxID++
		students = append(students, models.Student{
			ID:               fmt.Sprintf("s%d", maxID),
			Name:             row[ingest.HeaderName],
			HighSchool:       row[ingest.HeaderHighSchool],
			Gender:           row[ingest.HeaderGender],
			Grade:            row[ingest.HeaderGrade],
			TargetUniversity: row[ingest.HeaderTargetUniversity],
			ClassID:          row[ingest.HeaderClassID],
			JoinDate:         today,
		})
		result.StudentsAdded++
	}

	if err := s.records.SaveRecords(ctx, students, grades); err != nil {
		observability.Imports().WithLabelValues(models.ImportFormatFlat, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return dto.ImportResult{}, err
	}

	s.finish(ctx, span, fileName, result, start)
	return result, nil
}

func (s *importService) ImportUpload(ctx context.Context, file *multipart.FileHeader) (dto.ImportResult, error) {
	if file == nil {
		return dto.ImportResult{}, errors.New("file is required")
	}

	if file.Size > s.maxUploadBytes {
		return dto.ImportResult{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.ImportResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	data, err := io.ReadAll(io.LimitReader(handle, s.maxUploadBytes+1))
	if err != nil {
		return dto.ImportResult{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return dto.ImportResult{}, ErrUploadTooLarge
	}

	if err := checkUploadType(file.Filename, data); err != nil {
		return dto.ImportResult{}, err
	}

	return s.ImportDocument(ctx, file.Filename, string(data))
}

func (s *importService) Preview(ctx context.Context, text string) (dto.ImportPreview, error) {
	doc, err := ingest.ParseSectioned(text)

	var formatErr *ingest.FormatError
	if errors.As(err, &formatErr) {
		return s.previewFlat(text)
	}
	if err != nil {
		return dto.ImportPreview{}, err
	}

	preview := dto.ImportPreview{
		Format:      models.ImportFormatSectioned,
		GradeCount:  len(doc.Grades),
		SkippedRows: doc.SkippedRows,
	}

	for i, row := range doc.Students {
		if i == previewLimit {
			preview.MoreCount = len(doc.Students) - previewLimit
			break
		}
		preview.Students = append(preview.Students, dto.PreviewStudent{
			Name:             s.sanitizer.Sanitize(row.Name),
			HighSchool:       s.sanitizer.Sanitize(row.HighSchool),
			Gender:           s.sanitizer.Sanitize(row.Gender),
			CourseSubject:    s.sanitizer.Sanitize(row.CourseSubject),
			TargetUniversity: s.sanitizer.Sanitize(row.TargetUniversity),
			TargetDept:       s.sanitizer.Sanitize(row.TargetDept),
		})
	}

	return preview, nil
}

func (s *importService) previewFlat(text string) (dto.ImportPreview, error) {
	rows, err := ingest.ParseFlat(text)
	if err != nil {
		return dto.ImportPreview{}, err
	}
	if err := ingest.ValidateRoster(rows); err != nil {
		return dto.ImportPreview{}, err
	}

	preview := dto.ImportPreview{Format: models.ImportFormatFlat}
	for i, row := range rows {
		if i == previewLimit {
			preview.MoreCount = len(rows) - previewLimit
			break
		}
		preview.Students = append(preview.Students, dto.PreviewStudent{
			Name:             s.sanitizer.Sanitize(row[ingest.HeaderName]),
			HighSchool:       s.sanitizer.Sanitize(row[ingest.HeaderHighSchool]),
			Gender:           s.sanitizer.Sanitize(row[ingest.HeaderGender]),
			Grade:            s.sanitizer.Sanitize(row[ingest.HeaderGrade]),
			TargetUniversity: s.sanitizer.Sanitize(row[ingest.HeaderTargetUniversity]),
		})
	}

	return preview, nil
}

func (s *importService) History(ctx context.Context, limit int) ([]models.ImportRecord, error) {
	if s.auditLog == nil {
		return nil, nil
	}
	return s.auditLog.List(ctx, limit)
}

func (s *importService) Template() string {
	return ingest.Template()
}

// ExportDocument serializes the current collections back into the sectioned
// layout. Grades whose student no longer exists are omitted, mirroring the
// import-side drop policy.
func (s *importService) ExportDocument(ctx context.Context) (string, error) {
	students, err := s.records.Students(ctx)
	if err != nil {
		return "", err
	}
	grades, err := s.records.Grades(ctx)
	if err != nil {
		return "", err
	}

	nameByID := make(map[string]string, len(students))
	doc := ingest.SectionedDocument{}

	for _, student := range students {
		nameByID[student.ID] = student.Name
		doc.Students = append(doc.Students, ingest.StudentRow{
			StudentCode:      student.StudentCode,
			Classroom:        student.Classroom,
			Name:             student.Name,
			NameKana:         student.NameKana,
			Gender:           student.Gender,
			HighSchool:       student.HighSchool,
			CourseSubject:    student.CourseSubject,
			SchoolClass:      student.SchoolClass,
			Club:             student.Club,
			TargetUniversity: student.TargetUniversity,
			TargetDept:       student.TargetDept,
		})
	}

	for _, grade := range grades {
		name, ok := nameByID[grade.StudentID]
		if !ok {
			continue
		}

		row := ingest.GradeRow{
			Name:          name,
			LessonNumber:  grade.LessonNumber,
			LessonContent: grade.LessonContent,
			Date:          grade.Date,
		}
		if grade.Scores != nil {
			row.Comprehension = grade.Scores.Comprehension
			row.UnseenProblems = grade.Scores.UnseenProblems
			row.Grammar = grade.Scores.Grammar
			row.Vocabulary = grade.Scores.Vocabulary
			row.Listening = grade.Scores.Listening
		}
		row.Total, _ = grade.TotalPair()
		doc.Grades = append(doc.Grades, row)
	}

	return ingest.WriteSectioned(doc), nil
}

func (s *importService) finish(ctx context.Context, span trace.Span, fileName string, result dto.ImportResult, start time.Time) {
	observability.Imports().WithLabelValues(result.Format, "succeeded").Inc()
	observability.ImportDuration().Observe(s.now().Sub(start).Seconds())
	if result.GradesDropped > 0 {
		observability.DroppedGrades().Add(float64(result.GradesDropped))
	}

	span.SetAttributes(
		attribute.String("import.format", result.Format),
		attribute.Int("import.students_added", result.StudentsAdded),
		attribute.Int("import.students_updated", result.StudentsUpdated),
		attribute.Int("import.grades_appended", result.GradesAppended),
		attribute.Int("import.grades_dropped", result.GradesDropped),
	)

	s.logger.Info().
		Str("file", fileName).
		Str("format", result.Format).
		Int("students_added", result.StudentsAdded).
		Int("students_updated", result.StudentsUpdated).
		Int("grades_appended", result.GradesAppended).
		Int("grades_dropped", result.GradesDropped).
		Int("skipped_rows", result.SkippedRows).
		Msg("import completed")

	if s.auditLog == nil {
		return
	}
	entry := models.ImportRecord{
		ID:              newAuditID(),
		FileName:        fileName,
		Format:          result.Format,
		StudentsAdded:   result.StudentsAdded,
		StudentsUpdated: result.StudentsUpdated,
		GradesAppended:  result.GradesAppended,
		GradesDropped:   result.GradesDropped,
		SkippedRows:     result.SkippedRows,
		CreatedAt:       s.now(),
	}
	if err := s.auditLog.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record import audit entry")
	}
}

func (s *importService) today() string {
	return s.now().Format("2006-01-02")
}

func applyStudentRow(student *models.Student, row ingest.StudentRow) {
	student.StudentCode = row.StudentCode
	student.Classroom = row.Classroom
	student.Name = row.Name
	student.NameKana = row.NameKana
	student.Gender = row.Gender
	student.HighSchool = row.HighSchool
	student.CourseSubject = row.CourseSubject
	student.SchoolClass = row.SchoolClass
	student.Club = row.Club
	student.TargetUniversity = row.TargetUniversity
	student.TargetDept = row.TargetDept
}

func studentIDs(students []models.Student) []string {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return ids
}

func gradeIDs(grades []models.Grade) []string {
	ids := make([]string, len(grades))
	for i, g := range grades {
		ids[i] = g.ID
	}
	return ids
}

func newAuditID() string {
	return uuid.NewString()
}

// maxIDSuffix scans surrogate ids of the form <prefix><integer> and returns
// the largest numeric suffix, 0 for a fresh collection. Ids that do not parse
// are ignored rather than rejected; the store predates this service.
func maxIDSuffix(prefix string, ids []string) int {
	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

func checkUploadType(fileName string, data []byte) error {
	lower := strings.ToLower(fileName)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		return ErrExcelNotSupported
	}

	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
		mtype.Is("application/vnd.ms-excel"):
		return ErrExcelNotSupported
	case mtype.Is("text/csv"), mtype.Is("text/plain"):
		return nil
	}

	for parent := mtype.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Is("text/plain") {
			return nil
		}
	}

	return ErrUnsupportedFileType
}
