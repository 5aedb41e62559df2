// Package eligibility derives attendance percentages and the eligibility
// verdict from the student grid. Medical coverage adds a flat +5% capped at
// 100%; the eligibility cutoff is 80.0 inclusive.
package eligibility

import (
	"rollbook/internal/catalog"
	"rollbook/internal/store"
)

// Threshold is the adjusted-percent cutoff. 80.0 itself is eligible.
const Threshold = 80.0

// Bonus is the flat percentage added once when medical coverage exists.
const Bonus = 5.0

// Calculator reads the store to answer eligibility questions. It never
// mutates anything.
type Calculator struct {
	store *store.Store
}

// NewCalculator creates a calculator over the given store.
func NewCalculator(st *store.Store) *Calculator {
	return &Calculator{store: st}
}

// TotalSessions counts the distinct dates recorded for the subject in the
// student grid, excluding holidays. The holiday check is live: a date written
// first and declared a holiday later is excluded from the result.
func (c *Calculator) TotalSessions(subjectCode string) int {
	n := 0
	for key := range c.store.StudentAttendance {
		code, date := store.SplitCellKey(key)
		if code == subjectCode && !c.store.IsHoliday(date) {
			n++
		}
	}
	return n
}

// PresentCount counts the non-holiday dates where the student's mark is
// Present. An unrecorded cell counts as absent, not as excluded.
func (c *Calculator) PresentCount(subjectCode, regNo string) int {
	n := 0
	for key, cell := range c.store.StudentAttendance {
		code, date := store.SplitCellKey(key)
		if code != subjectCode || c.store.IsHoliday(date) {
			continue
		}
		if cell[regNo] == store.Present {
			n++
		}
	}
	return n
}

// HasMedicalCoverage reports whether any medical record for the student names
// the subject or carries the "ALL" scope. Coverage is subject-scoped only:
// the record's date range is deliberately not compared against the attendance
// dates, so a single record exempts the whole subject.
func (c *Calculator) HasMedicalCoverage(regNo, subjectCode string) bool {
	for _, m := range c.store.Medicals {
		if m.RegNo != regNo {
			continue
		}
		if m.Scope == catalog.ScopeAll || m.Scope == subjectCode {
			return true
		}
	}
	return false
}

// RawPercent is presentCount/totalSessions*100, or 0 when the subject has no
// sessions.
func (c *Calculator) RawPercent(subjectCode, regNo string) float64 {
	total := c.TotalSessions(subjectCode)
	if total == 0 {
		return 0
	}
	return float64(c.PresentCount(subjectCode, regNo)) * 100.0 / float64(total)
}

// AdjustedPercent applies the medical bonus to the raw percent. The bonus is
// flat per (student, subject): overlapping records still add a single +5. A
// subject with no sessions stays at 0 even with coverage.
func (c *Calculator) AdjustedPercent(subjectCode, regNo string) float64 {
	total := c.TotalSessions(subjectCode)
	if total == 0 {
		return 0
	}
	percent := float64(c.PresentCount(subjectCode, regNo)) * 100.0 / float64(total)
	if c.HasMedicalCoverage(regNo, subjectCode) {
		percent += Bonus
		if percent > 100.0 {
			percent = 100.0
		}
	}
	return percent
}

// IsEligible reports whether the adjusted percent meets the threshold.
func (c *Calculator) IsEligible(subjectCode, regNo string) bool {
	return c.AdjustedPercent(subjectCode, regNo) >= Threshold
}

// Line is the per-(student, subject) summary the report generator renders.
type Line struct {
	Present  int
	Total    int
	Raw      float64
	Adjusted float64
	Eligible bool
}

// Summarize computes the full summary for one student and subject.
func (c *Calculator) Summarize(subjectCode, regNo string) Line {
	l := Line{
		Present:  c.PresentCount(subjectCode, regNo),
		Total:    c.TotalSessions(subjectCode),
		Raw:      c.RawPercent(subjectCode, regNo),
		Adjusted: c.AdjustedPercent(subjectCode, regNo),
	}
	l.Eligible = l.Adjusted >= Threshold
	return l
}
