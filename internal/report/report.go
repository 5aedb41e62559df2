// Package report renders the plain-text eligibility reports: the full
// per-student report for admins and the per-subject summary for lecturers.
// The column layout is a compatibility contract; do not reorder it.
package report

import (
	"fmt"
	"strings"

	"rollbook/internal/catalog"
	"rollbook/internal/eligibility"
	"rollbook/internal/store"
)

// Generator assembles reports from the calculator's output.
type Generator struct {
	store   *store.Store
	catalog *catalog.Catalog
	calc    *eligibility.Calculator
}

// NewGenerator creates a generator over the given store and catalog.
func NewGenerator(st *store.Store, cat *catalog.Catalog, calc *eligibility.Calculator) *Generator {
	return &Generator{store: st, catalog: cat, calc: calc}
}

func verdict(eligible bool) string {
	if eligible {
		return "YES"
	}
	return "NO"
}

// FullStudentReport renders one table per student covering every catalog
// subject. Students are ordered by registration number.
func (g *Generator) FullStudentReport() string {
	var sb strings.Builder
	sb.WriteString("FULL STUDENT REPORT (Medical +5%, Eligibility >=80%)\n")
	sb.WriteString("------------------------------------------------------\n\n")

	students := g.store.SortedStudents()
	if len(students) == 0 {
		sb.WriteString("No students found. Admin -> Students -> Add Student.\n")
		return sb.String()
	}

	for _, st := range students {
		fmt.Fprintf(&sb, "Student: %s - %s\n", st.RegNo, st.Name)
		fmt.Fprintf(&sb, "%-10s %-30s %8s %8s %12s %12s %12s\n",
			"Subject", "Title", "Present", "Total", "%", "%+Med", "Eligible")

		for _, sub := range g.catalog.Subjects {
			l := g.calc.Summarize(sub.Code, st.RegNo)
			fmt.Fprintf(&sb, "%-10s %-30s %8d %8d %11.2f%% %11.2f%% %12s\n",
				sub.Code, sub.Title, l.Present, l.Total, l.Raw, l.Adjusted, verdict(l.Eligible))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SubjectSummary renders the lecturer's view: every student's standing in the
// one subject the lecturer owns.
func (g *Generator) SubjectSummary(lecturer string) string {
	sub := g.catalog.ForLecturer(lecturer)
	if sub == nil {
		return "No subject assigned.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "LECTURER SUMMARY for %s - %s\n", sub.Code, sub.Title)
	fmt.Fprintf(&sb, "Lecturer: %s\n", sub.LecturerName)
	sb.WriteString("Medical adds +5% (max 100%). Eligible if >=80%.\n\n")

	total := g.calc.TotalSessions(sub.Code)
	fmt.Fprintf(&sb, "Total Sessions (excluding holidays): %d\n\n", total)

	fmt.Fprintf(&sb, "%-12s %-25s %8s %8s %12s %12s %10s\n",
		"RegNo", "Name", "Present", "Total", "%", "%+Med", "Eligible")

	for _, st := range g.store.SortedStudents() {
		l := g.calc.Summarize(sub.Code, st.RegNo)
		fmt.Fprintf(&sb, "%-12s %-25s %8d %8d %11.2f%% %11.2f%% %10s\n",
			st.RegNo, st.Name, l.Present, l.Total, l.Raw, l.Adjusted, verdict(l.Eligible))
	}
	return sb.String()
}
