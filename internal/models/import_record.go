package models

import "time"

// Import format labels recorded in the audit log.
const (
	ImportFormatSectioned = "sectioned"
	ImportFormatFlat      = "flat"
)

// ImportRecord is the audit entry written after every successful CSV import.
type ImportRecord struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	FileName        string    `gorm:"size:255" json:"fileName"`
	Format          string    `gorm:"size:16;not null" json:"format"`
	StudentsAdded   int       `json:"studentsAdded"`
	StudentsUpdated int       `json:"studentsUpdated"`
	GradesAppended  int       `json:"gradesAppended"`
	GradesDropped   int       `json:"gradesDropped"`
	SkippedRows     int       `json:"skippedRows"`
	CreatedAt       time.Time `json:"createdAt"`
}
