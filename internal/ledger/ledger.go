// Package ledger records and queries attendance marks and manages the roster
// and holiday set they depend on. It enforces the one hard recording rule:
// nothing is ever written for a holiday date.
package ledger

import (
	"errors"
	"strings"

	"rollbook/internal/dateutil"
	"rollbook/internal/store"
)

var (
	// ErrHolidayBlocked rejects an attendance write on a holiday date.
	ErrHolidayBlocked = errors.New("date is a holiday, attendance not allowed")
	// ErrDuplicateStudent rejects a registration number already on the roster.
	ErrDuplicateStudent = errors.New("registration number already exists")
	// ErrUnknownStudent reports a registration number not on the roster.
	ErrUnknownStudent = errors.New("unknown student")
)

// Service owns all mutations of the roster, holiday set, and attendance grids.
type Service struct {
	store *store.Store
}

// NewService creates a ledger over the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// NormalizeStatus coerces free-form status input to exactly Present or Absent.
// Anything whose trimmed upper-case form does not start with "A" is Present;
// that lenient default is part of the recording contract.
func NormalizeStatus(s string) store.Status {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(s)), "A") {
		return store.Absent
	}
	return store.Present
}

// Record replaces the full set of marks for the (subject, date) cell in the
// grid selected by kind. The write is rejected whole when the date is invalid
// or a holiday; last write per cell wins otherwise.
func (s *Service) Record(subjectCode, date string, statuses map[string]string, kind store.Kind) error {
	d, err := dateutil.Parse(date)
	if err != nil {
		return err
	}
	if s.store.IsHoliday(d) {
		return ErrHolidayBlocked
	}
	cell := make(map[string]store.Status, len(statuses))
	for person, raw := range statuses {
		cell[person] = NormalizeStatus(raw)
	}
	s.store.Grid(kind)[store.CellKey(subjectCode, d)] = cell
	return nil
}

// Cell returns the person-to-status marks recorded for the (subject, date)
// cell, or an empty map when the cell was never written.
func (s *Service) Cell(subjectCode, date string, kind store.Kind) (map[string]store.Status, error) {
	d, err := dateutil.Parse(date)
	if err != nil {
		return nil, err
	}
	cell := s.store.Grid(kind)[store.CellKey(subjectCode, d)]
	out := make(map[string]store.Status, len(cell))
	for person, st := range cell {
		out[person] = st
	}
	return out, nil
}

// AddStudent registers a new student. Registration numbers are unique.
func (s *Service) AddStudent(regNo, name string) error {
	regNo = strings.TrimSpace(regNo)
	name = strings.TrimSpace(name)
	if regNo == "" || name == "" {
		return errors.New("registration number and name required")
	}
	if _, ok := s.store.Students[regNo]; ok {
		return ErrDuplicateStudent
	}
	s.store.Students[regNo] = store.Student{RegNo: regNo, Name: name}
	return nil
}

// DeleteStudent removes a student and cascades: every mark for the student in
// every subject's cells goes, and so do the student's medical records.
// Notifications already sent stay.
func (s *Service) DeleteStudent(regNo string) error {
	if _, ok := s.store.Students[regNo]; !ok {
		return ErrUnknownStudent
	}
	delete(s.store.Students, regNo)
	for _, cell := range s.store.StudentAttendance {
		delete(cell, regNo)
	}
	kept := s.store.Medicals[:0]
	for _, m := range s.store.Medicals {
		if m.RegNo != regNo {
			kept = append(kept, m)
		}
	}
	s.store.Medicals = kept
	return nil
}

// Students returns the roster ordered by registration number.
func (s *Service) Students() []store.Student {
	return s.store.SortedStudents()
}

// AddHoliday puts a date into the holiday set. Attendance already recorded for
// that date is not deleted, but it stops counting: the holiday check is live.
func (s *Service) AddHoliday(date string) error {
	d, err := dateutil.Parse(date)
	if err != nil {
		return err
	}
	s.store.Holidays[d] = true
	return nil
}

// RemoveHoliday takes a date out of the holiday set.
func (s *Service) RemoveHoliday(date string) error {
	d, err := dateutil.Parse(date)
	if err != nil {
		return err
	}
	delete(s.store.Holidays, d)
	return nil
}

// Holidays returns the holiday dates in chronological order.
func (s *Service) Holidays() []string {
	return s.store.SortedHolidays()
}
