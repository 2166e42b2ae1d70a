package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
)

// ErrScoreExceedsMax rejects a manual entry whose score is above the maximum.
var ErrScoreExceedsMax = errors.New("点数が満点を超えています")

// GradeService covers manual grade entry and the recent-grades listing.
type GradeService interface {
	Add(ctx context.Context, req dto.GradeEntryRequest) (dto.GradeEntryResponse, error)
	Recent(ctx context.Context, limit int) ([]dto.RecentGrade, error)
}

type gradeService struct {
	records  repository.RecordRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewGradeService constructs the grade entry service.
func NewGradeService(records repository.RecordRepository, validate *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		records:  records,
		validate: validate,
		logger:   logger.With().Str("component", "grade_service").Logger(),
	}
}

// Add stores one manually entered grade. The record takes the sectioned
// shape with zeroed sub-scores; maxScores spreads the maximum evenly across
// the five categories.
func (s *gradeService) Add(ctx context.Context, req dto.GradeEntryRequest) (dto.GradeEntryResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.GradeEntryResponse{}, err
	}
	if req.Score > req.MaxScore {
		return dto.GradeEntryResponse{}, ErrScoreExceedsMax
	}

	students, err := s.records.Students(ctx)
	if err != nil {
		return dto.GradeEntryResponse{}, err
	}

	found := false
	for _, student := range students {
		if student.ID == req.StudentID {
			found = true
			break
		}
	}
	if !found {
		return dto.GradeEntryResponse{}, ErrStudentNotFound
	}

	grades, err := s.records.Grades(ctx)
	if err != nil {
		return dto.GradeEntryResponse{}, err
	}

	lessonNumber := 1
	for _, grade := range grades {
		if grade.StudentID == req.StudentID {
			lessonNumber++
		}
	}

	perCategory := req.MaxScore / 5
	scores := models.ScoreSet{Total: req.Score}
	maxScores := models.ScoreSet{
		Comprehension:  perCategory,
		UnseenProblems: perCategory,
		Grammar:        perCategory,
		Vocabulary:     perCategory,
		Listening:      perCategory,
		Total:          req.MaxScore,
	}

	grade := models.Grade{
		ID:            fmt.Sprintf("g%d", maxIDSuffix("g", gradeIDs(grades))+1),
		StudentID:     req.StudentID,
		ClassID:       req.ClassID,
		Date:          req.Date,
		LessonNumber:  lessonNumber,
		LessonContent: req.TestName,
		Scores:        &scores,
		MaxScores:     &maxScores,
	}
	grades = append(grades, grade)

	if err := s.records.SaveRecords(ctx, students, grades); err != nil {
		return dto.GradeEntryResponse{}, err
	}

	s.logger.Info().
		Str("grade_id", grade.ID).
		Str("student_id", req.StudentID).
		Int("lesson_number", lessonNumber).
		Msg("grade recorded")

	return dto.GradeEntryResponse{GradeID: grade.ID, LessonNumber: lessonNumber}, nil
}

// Recent returns the newest grades, newest first. Grades whose student is no
// longer in the roster are skipped rather than reported as errors.
func (s *gradeService) Recent(ctx context.Context, limit int) ([]dto.RecentGrade, error) {
	if limit <= 0 {
		limit = 20
	}

	grades, err := s.records.Grades(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.records.Students(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.records.Classes(ctx)
	if err != nil {
		return nil, err
	}

	nameByID := make(map[string]string, len(students))
	for _, student := range students {
		nameByID[student.ID] = student.Name
	}
	classNameByID := make(map[string]string, len(classes))
	for _, class := range classes {
		classNameByID[class.ID] = class.Name
	}

	var recent []dto.RecentGrade
	for i := len(grades) - 1; i >= 0 && len(recent) < limit; i-- {
		grade := grades[i]
		name, ok := nameByID[grade.StudentID]
		if !ok {
			continue
		}

		score, maxScore := grade.TotalPair()
		recent = append(recent, dto.RecentGrade{
			Date:        grade.Date,
			StudentName: name,
			ClassName:   classNameByID[grade.ClassID],
			Score:       score,
			MaxScore:    maxScore,
			Percent:     grade.Percent(),
		})
	}

	return recent, nil
}
