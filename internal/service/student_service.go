package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/dto"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
)

// StudentService exposes the roster listing.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentListEntry, error)
}

type studentService struct {
	records repository.RecordRepository
	logger  zerolog.Logger
}

// NewStudentService constructs the roster service.
func NewStudentService(records repository.RecordRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		records: records,
		logger:  logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentListEntry, error) {
	students, err := s.records.Students(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.records.Classes(ctx)
	if err != nil {
		return nil, err
	}

	classNameByID := make(map[string]string, len(classes))
	for _, class := range classes {
		classNameByID[class.ID] = class.Name
	}

	entries := make([]dto.StudentListEntry, 0, len(students))
	for _, student := range students {
		entries = append(entries, dto.StudentListEntry{
			ID:               student.ID,
			Name:             student.Name,
			HighSchool:       student.HighSchool,
			Grade:            student.Grade,
			TargetUniversity: student.TargetUniversity,
			ClassID:          student.ClassID,
			ClassName:        classNameByID[student.ClassID],
			JoinDate:         student.JoinDate,
		})
	}

	return entries, nil
}
