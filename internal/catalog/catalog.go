// Package catalog holds the fixed subject catalog and the weekly timetable.
// Both are immutable process-wide configuration: they are supplied to the
// other components at construction time and never mutated at runtime.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ScopeAll is the medical-scope sentinel meaning "applies to all subjects".
const ScopeAll = "ALL"

// Subject is one entry of the fixed catalog.
type Subject struct {
	Code         string `json:"code"`
	Title        string `json:"title"`
	LecturerName string `json:"lecturer_name"`
	Lecturer     string `json:"lecturer"` // login identity of the owning lecturer
}

// Catalog is the subject list plus the weekday timetable.
type Catalog struct {
	Subjects  []Subject
	Timetable map[time.Weekday]string // weekday -> subject code
	TimeRange string                  // informational daily window, e.g. "08:00 to 15:00"
}

// Default returns the production catalog: five HNDIT subjects, Monday-Friday
// timetable, one subject per day.
func Default() *Catalog {
	return &Catalog{
		Subjects: []Subject{
			{Code: "HNDIT 1012", Title: "Visual Application Programming", LecturerName: "Mr. J. R. Jayasinghe", Lecturer: "lect1012"},
			{Code: "HNDIT 1022", Title: "Web Design", LecturerName: "Ms. H. A. P. Anusha", Lecturer: "lect1022"},
			{Code: "HNDIT 1032", Title: "Computer Network Systems", LecturerName: "Ms. S. M. M. Malika", Lecturer: "lect1032"},
			{Code: "HNDIT 1042", Title: "Information Management Systems", LecturerName: "Mr. Kannangara", Lecturer: "lect1042"},
			{Code: "HNDIT 1062", Title: "Communication Skills", LecturerName: "Ms. Renuka", Lecturer: "lect1062"},
		},
		Timetable: map[time.Weekday]string{
			time.Monday:    "HNDIT 1022",
			time.Tuesday:   "HNDIT 1012",
			time.Wednesday: "HNDIT 1032",
			time.Thursday:  "HNDIT 1042",
			time.Friday:    "HNDIT 1062",
		},
		TimeRange: "08:00 to 15:00",
	}
}

// ByCode returns the subject with the given code, or nil.
func (c *Catalog) ByCode(code string) *Subject {
	for i := range c.Subjects {
		if c.Subjects[i].Code == code {
			return &c.Subjects[i]
		}
	}
	return nil
}

// ForLecturer returns the subject owned by the given lecturer identity, or nil.
func (c *Catalog) ForLecturer(lecturer string) *Subject {
	for i := range c.Subjects {
		if c.Subjects[i].Lecturer == lecturer {
			return &c.Subjects[i]
		}
	}
	return nil
}

// TodayText describes the class scheduled for the given day, or reports a
// weekend when the timetable has no entry.
func (c *Catalog) TodayText(now time.Time) string {
	day := now.Weekday()
	code, ok := c.Timetable[day]
	if !ok {
		return "No class today (Weekend)."
	}
	sub := c.ByCode(code)
	if sub == nil {
		return "No class today (Weekend)."
	}
	return fmt.Sprintf("%s: %s - %s | %s | Lecturer: %s",
		strings.ToUpper(day.String()), sub.Code, sub.Title, c.TimeRange, sub.LecturerName)
}
