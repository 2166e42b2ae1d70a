package models

// Class describes a course offering. Classes are read-only reference data
// loaded from the static documents; uploads never modify them.
type Class struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
}
