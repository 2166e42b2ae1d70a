package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aoisorajuku/seiseki-api/internal/models"
)

// Static document file names. Each file is an object wrapping one known
// array-valued property, the shape the dashboard has always consumed.
const (
	classesFile    = "classes.json"
	studentsFile   = "students.json"
	gradesFile     = "grades.json"
	attendanceFile = "attendance.json"
)

const arrayDocSchema = `{
	"type": "object",
	"required": [%q],
	"properties": {%q: {"type": "array"}}
}`

// StaticDocuments reads the read-only JSON documents that seed the record
// store when the key/value store is empty. A missing file is treated as an
// empty collection; a malformed or schema-violating file is an error.
type StaticDocuments struct {
	dir    string
	logger zerolog.Logger
}

// NewStaticDocuments creates a loader rooted at dir.
func NewStaticDocuments(dir string, logger zerolog.Logger) *StaticDocuments {
	return &StaticDocuments{
		dir:    dir,
		logger: logger.With().Str("component", "static_documents").Logger(),
	}
}

// Classes loads the class reference data.
func (d *StaticDocuments) Classes() ([]models.Class, error) {
	var classes []models.Class
	if err := d.loadArray(classesFile, "classes", &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// Students loads the durable student roster.
func (d *StaticDocuments) Students() ([]models.Student, error) {
	var students []models.Student
	if err := d.loadArray(studentsFile, "students", &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Grades loads the durable grade history.
func (d *StaticDocuments) Grades() ([]models.Grade, error) {
	var grades []models.Grade
	if err := d.loadArray(gradesFile, "grades", &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

// Attendance loads the attendance marks.
func (d *StaticDocuments) Attendance() ([]models.Attendance, error) {
	var attendance []models.Attendance
	if err := d.loadArray(attendanceFile, "attendance", &attendance); err != nil {
		return nil, err
	}
	return attendance, nil
}

func (d *StaticDocuments) loadArray(file, property string, out interface{}) error {
	path := filepath.Join(d.dir, file)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Warn().Str("file", file).Msg("static document missing, treating as empty")
			return nil
		}
		return fmt.Errorf("read %s: %w", file, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}

	schema, err := jsonschema.CompileString(file, fmt.Sprintf(arrayDocSchema, property, property))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", file, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validate %s: %w", file, err)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}

	if err := json.Unmarshal(wrapper[property], out); err != nil {
		return fmt.Errorf("decode %s.%s: %w", file, property, err)
	}

	return nil
}
