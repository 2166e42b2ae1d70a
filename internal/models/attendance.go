package models

// AttendanceStatusPresent is the status value counted as attended.
const AttendanceStatusPresent = "出席"

// Attendance is one attendance mark for a student on a date.
type Attendance struct {
	StudentID string `json:"studentId"`
	ClassID   string `json:"classId,omitempty"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}
