package dto

// ImportResult reports what an import changed. Silent per-record policies
// (short rows skipped, grades with no matching student dropped) are not
// errors, but their counts are surfaced here so callers can report them.
type ImportResult struct {
	Format          string `json:"format"`
	StudentsAdded   int    `json:"studentsAdded"`
	StudentsUpdated int    `json:"studentsUpdated"`
	GradesAppended  int    `json:"gradesAppended"`
	GradesDropped   int    `json:"gradesDropped"`
	SkippedRows     int    `json:"skippedRows"`
}

// PreviewStudent is one sanitized roster row shown before saving.
type PreviewStudent struct {
	Name             string `json:"name"`
	HighSchool       string `json:"highSchool"`
	Gender           string `json:"gender"`
	CourseSubject    string `json:"courseSubject,omitempty"`
	Grade            string `json:"grade,omitempty"`
	TargetUniversity string `json:"targetUniversity"`
	TargetDept       string `json:"targetDept,omitempty"`
}

// ImportPreview summarises a parsed document without persisting anything.
type ImportPreview struct {
	Format      string           `json:"format"`
	Students    []PreviewStudent `json:"students"`
	MoreCount   int              `json:"moreCount"`
	GradeCount  int              `json:"gradeCount"`
	SkippedRows int              `json:"skippedRows"`
}
