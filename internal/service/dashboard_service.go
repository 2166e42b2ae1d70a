package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
)

// ErrStudentNotFound indicates the requested student is not in the roster.
var ErrStudentNotFound = errors.New("student not found")

// DashboardService produces the per-student performance view and the class
// occupancy overview from the record store.
type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID string) (dto.StudentDashboardResponse, error)
	ClassSummaries(ctx context.Context) ([]dto.ClassSummary, error)
}

type dashboardService struct {
	records  repository.RecordRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(records repository.RecordRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		records:  records,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID string) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%s", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	students, err := s.records.Students(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	var student *models.Student
	for i := range students {
		if students[i].ID == studentID {
			student = &students[i]
			break
		}
	}
	if student == nil {
		return dto.StudentDashboardResponse{}, ErrStudentNotFound
	}

	grades, err := s.records.Grades(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	classes, err := s.records.Classes(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	attendance, err := s.records.Attendance(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(*student, students, grades, classes, attendance)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(student models.Student, students []models.Student, grades []models.Grade, classes []models.Class, attendance []models.Attendance) dto.StudentDashboardResponse {
	response := dto.StudentDashboardResponse{
		StudentID:   student.ID,
		StudentName: student.Name,
		ClassID:     student.ClassID,
	}

	for _, class := range classes {
		if class.ID == student.ClassID {
			response.ClassName = class.Name
			break
		}
	}

	studentGrades := gradesForStudent(grades, student.ID)
	for _, grade := range studentGrades {
		score, maxScore := grade.TotalPair()
		response.Grades = append(response.Grades, dto.GradeEntry{
			Date:          grade.Date,
			LessonNumber:  grade.LessonNumber,
			LessonContent: grade.LessonContent,
			Score:         score,
			MaxScore:      maxScore,
			Percent:       grade.Percent(),
		})
	}

	response.StudentAverage = averagePercent(studentGrades)
	response.ClassAverage = classAverage(students, grades, student.ClassID, "")

	records := attendanceForStudent(attendance, student.ID)
	present := 0
	for _, record := range records {
		response.Attendance = append(response.Attendance, dto.AttendanceEntry{
			Date:   record.Date,
			Status: record.Status,
		})
		if record.Status == models.AttendanceStatusPresent {
			present++
		}
	}
	if len(records) > 0 {
		response.AttendanceRate = roundPercent(float64(present) / float64(len(records)) * 100)
	}

	return response
}

func (s *dashboardService) ClassSummaries(ctx context.Context) ([]dto.ClassSummary, error) {
	classes, err := s.records.Classes(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.records.Students(ctx)
	if err != nil {
		return nil, err
	}
	grades, err := s.records.Grades(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ClassSummary, 0, len(classes))
	for _, class := range classes {
		enrolled := 0
		for _, student := range students {
			if student.ClassID == class.ID {
				enrolled++
			}
		}

		summary := dto.ClassSummary{
			ClassID:  class.ID,
			Name:     class.Name,
			Day:      class.Day,
			Time:     class.Time,
			Capacity: class.Capacity,
			Enrolled: enrolled,
			Average:  classAverage(students, grades, class.ID, ""),
		}
		if class.Capacity > 0 {
			summary.OccupancyRate = roundPercent(float64(enrolled) / float64(class.Capacity) * 100)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func gradesForStudent(grades []models.Grade, studentID string) []models.Grade {
	var matched []models.Grade
	for _, grade := range grades {
		if grade.StudentID == studentID {
			matched = append(matched, grade)
		}
	}
	// Dates are ISO 8601 strings, so lexicographic order is chronological.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date < matched[j].Date
	})
	return matched
}

func attendanceForStudent(attendance []models.Attendance, studentID string) []models.Attendance {
	var matched []models.Attendance
	for _, record := range attendance {
		if record.StudentID == studentID {
			matched = append(matched, record)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date < matched[j].Date
	})
	return matched
}

// classAverage averages the percentages of every grade belonging to students
// of the class, optionally restricted to a single date. Class membership is
// resolved through the student, not the grade's own classId.
func classAverage(students []models.Student, grades []models.Grade, classID, date string) int {
	classStudents := make(map[string]bool, len(students))
	for _, student := range students {
		if student.ClassID == classID {
			classStudents[student.ID] = true
		}
	}

	var relevant []models.Grade
	for _, grade := range grades {
		if !classStudents[grade.StudentID] {
			continue
		}
		if date != "" && grade.Date != date {
			continue
		}
		relevant = append(relevant, grade)
	}

	return averagePercent(relevant)
}

func averagePercent(grades []models.Grade) int {
	if len(grades) == 0 {
		return 0
	}

	total := 0.0
	for _, grade := range grades {
		score, maxScore := grade.TotalPair()
		if maxScore == 0 {
			continue
		}
		total += float64(score) / float64(maxScore) * 100
	}

	return roundPercent(total / float64(len(grades)))
}

func roundPercent(v float64) int {
	return int(v + 0.5)
}
