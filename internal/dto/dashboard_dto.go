package dto

// GradeEntry is one row of a student's grade history, dual score shape
// already resolved.
type GradeEntry struct {
	Date          string `json:"date"`
	LessonNumber  int    `json:"lessonNumber"`
	LessonContent string `json:"lessonContent"`
	Score         int    `json:"score"`
	MaxScore      int    `json:"maxScore"`
	Percent       int    `json:"percent"`
}

// AttendanceEntry is one attendance mark for display.
type AttendanceEntry struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// StudentDashboardResponse is the per-student performance view.
type StudentDashboardResponse struct {
	StudentID      string            `json:"studentId"`
	StudentName    string            `json:"studentName"`
	ClassID        string            `json:"classId"`
	ClassName      string            `json:"className"`
	Grades         []GradeEntry      `json:"grades"`
	StudentAverage int               `json:"studentAverage"`
	ClassAverage   int               `json:"classAverage"`
	Attendance     []AttendanceEntry `json:"attendance"`
	AttendanceRate int               `json:"attendanceRate"`
}

// ClassSummary is one card of the class occupancy overview.
type ClassSummary struct {
	ClassID       string `json:"classId"`
	Name          string `json:"name"`
	Day           string `json:"day"`
	Time          string `json:"time"`
	Capacity      int    `json:"capacity"`
	Enrolled      int    `json:"enrolled"`
	OccupancyRate int    `json:"occupancyRate"`
	Average       int    `json:"average"`
}

// RecentGrade is one row of the recent-grades listing.
type RecentGrade struct {
	Date        string `json:"date"`
	StudentName string `json:"studentName"`
	ClassName   string `json:"className"`
	Score       int    `json:"score"`
	MaxScore    int    `json:"maxScore"`
	Percent     int    `json:"percent"`
}
