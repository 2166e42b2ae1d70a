package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aoisorajuku/seiseki-api/internal/models"
)

// Key/value store keys. The names are carried over from the original store
// documents; persisted data written under them predates this service.
const (
	StudentDataKey = "studentData"
	GradeDataKey   = "gradeData"
)

// RecordRepository provides access to the student and grade collections.
// Reads prefer the key/value store and fall back to the static documents
// when a key is unset. Saves replace the store contents wholesale; there is
// no incremental diff-write.
type RecordRepository interface {
	Students(ctx context.Context) ([]models.Student, error)
	Grades(ctx context.Context) ([]models.Grade, error)
	Classes(ctx context.Context) ([]models.Class, error)
	Attendance(ctx context.Context) ([]models.Attendance, error)
	SaveRecords(ctx context.Context, students []models.Student, grades []models.Grade) error
}

type recordRepository struct {
	client *redis.Client
	docs   *StaticDocuments
	logger zerolog.Logger
}

// NewRecordRepository constructs the record store over a Redis client and a
// static document loader.
func NewRecordRepository(client *redis.Client, docs *StaticDocuments, logger zerolog.Logger) RecordRepository {
	return &recordRepository{
		client: client,
		docs:   docs,
		logger: logger.With().Str("component", "record_repository").Logger(),
	}
}

func (r *recordRepository) Students(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	found, err := r.lookup(ctx, StudentDataKey, &students)
	if err != nil {
		return nil, err
	}
	if found {
		return students, nil
	}
	return r.docs.Students()
}

func (r *recordRepository) Grades(ctx context.Context) ([]models.Grade, error) {
	var grades []models.Grade
	found, err := r.lookup(ctx, GradeDataKey, &grades)
	if err != nil {
		return nil, err
	}
	if found {
		return grades, nil
	}
	return r.docs.Grades()
}

// Classes are reference data and always come from the static documents.
func (r *recordRepository) Classes(ctx context.Context) ([]models.Class, error) {
	return r.docs.Classes()
}

func (r *recordRepository) Attendance(ctx context.Context) ([]models.Attendance, error) {
	return r.docs.Attendance()
}

func (r *recordRepository) SaveRecords(ctx context.Context, students []models.Student, grades []models.Grade) error {
	studentPayload, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("marshal students: %w", err)
	}

	gradePayload, err := json.Marshal(grades)
	if err != nil {
		return fmt.Errorf("marshal grades: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, StudentDataKey, studentPayload, 0)
	pipe.Set(ctx, GradeDataKey, gradePayload, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save records: %w", err)
	}

	r.logger.Info().
		Int("students", len(students)).
		Int("grades", len(grades)).
		Msg("record store replaced")

	return nil
}

// lookup reads one store key. The second return reports whether the key was
// populated; redis.Nil means the caller should fall back to the documents.
func (r *recordRepository) lookup(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}

	return true, nil
}
