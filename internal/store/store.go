// Package store owns the persistent state of the attendance engine: the
// student roster, the holiday set, medical records, notifications, and the
// two attendance grids. It holds data only; the rules live in the ledger,
// eligibility, and medical packages.
package store

import (
	"sort"
	"strings"
	"time"
)

// Status is a single attendance mark.
type Status string

const (
	Present Status = "P"
	Absent  Status = "A"
)

// Kind selects which attendance grid an operation targets.
type Kind string

const (
	KindStudent  Kind = "student"
	KindLecturer Kind = "lecturer"
)

// Student is one roster entry, keyed by registration number.
type Student struct {
	RegNo string `json:"reg_no"`
	Name  string `json:"name"`
}

// Medical is one medical-leave record. Scope is either a subject code or the
// "ALL" sentinel. The range is inclusive and End never precedes Start.
type Medical struct {
	RegNo string `json:"reg_no"`
	Scope string `json:"scope"`
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note"`
}

// Notification is a message to a lecturer, created only by the medical
// workflow. Notifications are never deleted; only Read flips.
type Notification struct {
	ID        string    `json:"id"`
	Lecturer  string    `json:"lecturer"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Grid is a two-level attendance index: cell key (subject code + date) to the
// marks recorded for that session, person by person. A cell that was never
// written has no entry and contributes nothing to totals.
type Grid map[string]map[string]Status

// Store aggregates everything the persistence gateway round-trips to disk.
type Store struct {
	Students           map[string]Student `json:"students"`
	Holidays           map[string]bool    `json:"holidays"`
	Medicals           []Medical          `json:"medicals"`
	Notifications      []Notification     `json:"notifications"`
	StudentAttendance  Grid               `json:"student_attendance"`
	LecturerAttendance Grid               `json:"lecturer_attendance"`
}

// New returns an empty store with all containers allocated.
func New() *Store {
	return &Store{
		Students:           make(map[string]Student),
		Holidays:           make(map[string]bool),
		Medicals:           []Medical{},
		Notifications:      []Notification{},
		StudentAttendance:  make(Grid),
		LecturerAttendance: make(Grid),
	}
}

// normalize reallocates any container a decoded blob left nil, so a store
// loaded from an older or partial file behaves like a fresh one.
func (s *Store) normalize() {
	if s.Students == nil {
		s.Students = make(map[string]Student)
	}
	if s.Holidays == nil {
		s.Holidays = make(map[string]bool)
	}
	if s.Medicals == nil {
		s.Medicals = []Medical{}
	}
	if s.Notifications == nil {
		s.Notifications = []Notification{}
	}
	if s.StudentAttendance == nil {
		s.StudentAttendance = make(Grid)
	}
	if s.LecturerAttendance == nil {
		s.LecturerAttendance = make(Grid)
	}
}

// Grid returns the attendance grid for the given kind. Anything that is not
// the lecturer grid is the student grid.
func (s *Store) Grid(kind Kind) Grid {
	if kind == KindLecturer {
		return s.LecturerAttendance
	}
	return s.StudentAttendance
}

// IsHoliday reports whether the date (canonical form) is in the holiday set.
func (s *Store) IsHoliday(date string) bool {
	return s.Holidays[date]
}

// SortedStudents returns the roster ordered by registration number, for
// deterministic report output.
func (s *Store) SortedStudents() []Student {
	out := make([]Student, 0, len(s.Students))
	for _, st := range s.Students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegNo < out[j].RegNo })
	return out
}

// SortedHolidays returns the holiday dates in chronological order.
func (s *Store) SortedHolidays() []string {
	out := make([]string, 0, len(s.Holidays))
	for d := range s.Holidays {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

const cellSep = "|"

// CellKey builds the composite grid key for a subject code and date.
func CellKey(subjectCode, date string) string {
	return subjectCode + cellSep + date
}

// SplitCellKey is the inverse of CellKey.
func SplitCellKey(key string) (subjectCode, date string) {
	if i := strings.LastIndex(key, cellSep); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}
