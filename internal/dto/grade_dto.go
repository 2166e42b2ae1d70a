package dto

// GradeEntryRequest is the manual single-grade entry form.
type GradeEntryRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	ClassID   string `json:"classId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	TestName  string `json:"testName" validate:"required"`
	Score     int    `json:"score" validate:"required,min=0"`
	MaxScore  int    `json:"maxScore" validate:"required,min=1"`
}

// GradeEntryResponse reports the stored grade.
type GradeEntryResponse struct {
	GradeID      string `json:"gradeId"`
	LessonNumber int    `json:"lessonNumber"`
}
