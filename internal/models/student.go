package models

// Student is one roster entry. Records originate either from the sectioned
// upload format (studentCode and the kana/classroom attributes populated) or
// from the legacy flat format (grade populated, no studentCode). The JSON
// field names match the persisted store documents and must not change.
type Student struct {
	ID               string `json:"id"`
	StudentCode      string `json:"studentCode,omitempty"`
	Name             string `json:"name"`
	NameKana         string `json:"nameKana,omitempty"`
	Gender           string `json:"gender"`
	HighSchool       string `json:"highSchool"`
	Grade            string `json:"grade,omitempty"`
	Classroom        string `json:"classroom,omitempty"`
	CourseSubject    string `json:"courseSubject,omitempty"`
	SchoolClass      string `json:"schoolClass,omitempty"`
	Club             string `json:"club,omitempty"`
	TargetUniversity string `json:"targetUniversity"`
	TargetDept       string `json:"targetDept,omitempty"`
	ClassID          string `json:"classId"`
	JoinDate         string `json:"joinDate"`
}
