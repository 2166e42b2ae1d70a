package dto

// StudentListEntry is one roster row with the class name resolved.
type StudentListEntry struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	HighSchool       string `json:"highSchool"`
	Grade            string `json:"grade,omitempty"`
	TargetUniversity string `json:"targetUniversity"`
	ClassID          string `json:"classId"`
	ClassName        string `json:"className"`
	JoinDate         string `json:"joinDate"`
}
