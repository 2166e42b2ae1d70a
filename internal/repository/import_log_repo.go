package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aoisorajuku/seiseki-api/internal/models"
)

// ImportLogRepository records the outcome of CSV imports.
type ImportLogRepository interface {
	Record(ctx context.Context, entry models.ImportRecord) error
	List(ctx context.Context, limit int) ([]models.ImportRecord, error)
}

type importLogRepository struct {
	db *gorm.DB
}

// NewImportLogRepository constructs the audit log repository.
func NewImportLogRepository(db *gorm.DB) ImportLogRepository {
	return &importLogRepository{db: db}
}

func (r *importLogRepository) Record(ctx context.Context, entry models.ImportRecord) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *importLogRepository) List(ctx context.Context, limit int) ([]models.ImportRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var entries []models.ImportRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
