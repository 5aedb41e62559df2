// Package medical implements the medical-leave workflow: validated
// submission, the notification fan-out to subject owners, and the mark-read
// and delete actions.
package medical

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"rollbook/internal/catalog"
	"rollbook/internal/dateutil"
	"rollbook/internal/ledger"
	"rollbook/internal/store"
)

// ErrInvalidDateRange rejects a medical whose end date precedes its start.
var ErrInvalidDateRange = errors.New("end date cannot be before start date")

// Workflow validates and applies medical submissions against the store.
type Workflow struct {
	store   *store.Store
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewWorkflow creates the workflow. The clock is injectable for tests.
func NewWorkflow(st *store.Store, cat *catalog.Catalog) *Workflow {
	return &Workflow{store: st, catalog: cat, now: time.Now}
}

// WithClock overrides the notification timestamp source.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// Submit validates and appends a medical record, then emits one notification
// per affected lecturer: every catalog subject's owner for the "ALL" scope,
// otherwise just the owner of the named subject. The created notifications
// are returned so the caller can fan them out further.
func (w *Workflow) Submit(regNo, scope, start, end, note string) ([]store.Notification, error) {
	startD, err := dateutil.Parse(start)
	if err != nil {
		return nil, err
	}
	endD, err := dateutil.Parse(end)
	if err != nil {
		return nil, err
	}
	if endD < startD {
		return nil, ErrInvalidDateRange
	}
	if _, ok := w.store.Students[regNo]; !ok {
		return nil, ledger.ErrUnknownStudent
	}

	m := store.Medical{RegNo: regNo, Scope: scope, Start: startD, End: endD, Note: note}
	w.store.Medicals = append(w.store.Medicals, m)

	var created []store.Notification
	if scope == catalog.ScopeAll {
		for _, sub := range w.catalog.Subjects {
			created = append(created, w.notify(sub.Lecturer, m))
		}
	} else if sub := w.catalog.ByCode(scope); sub != nil {
		created = append(created, w.notify(sub.Lecturer, m))
	}
	return created, nil
}

func (w *Workflow) notify(lecturer string, m store.Medical) store.Notification {
	n := store.Notification{
		ID:        uuid.NewString(),
		Lecturer:  lecturer,
		Message:   w.message(m),
		CreatedAt: w.now(),
	}
	w.store.Notifications = append(w.store.Notifications, n)
	return n
}

// message embeds the student identity, the inclusive range, the scope, and
// the fixed bonus-rule text.
func (w *Workflow) message(m store.Medical) string {
	name := ""
	if st, ok := w.store.Students[m.RegNo]; ok {
		name = st.Name
	}
	return fmt.Sprintf("Medical submitted for %s - %s | %s to %s | Subject: %s | Adds +5%% (max 100%%).",
		m.RegNo, name, m.Start, m.End, m.Scope)
}

// Delete removes every medical record matching the exact (regNo, scope,
// start, end) tuple. Notifications already created are not retracted. The
// count of removed records is returned.
func (w *Workflow) Delete(regNo, scope, start, end string) int {
	removed := 0
	kept := w.store.Medicals[:0]
	for _, m := range w.store.Medicals {
		if m.RegNo == regNo && m.Scope == scope && m.Start == start && m.End == end {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	w.store.Medicals = kept
	return removed
}

// Medicals returns all medical records in submission order.
func (w *Workflow) Medicals() []store.Medical {
	out := make([]store.Medical, len(w.store.Medicals))
	copy(out, w.store.Medicals)
	return out
}

// For returns the notifications addressed to a lecturer, newest first.
func (w *Workflow) For(lecturer string) []store.Notification {
	var out []store.Notification
	for _, n := range w.store.Notifications {
		if n.Lecturer == lecturer {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MarkAllRead flips the read flag on every notification addressed to the
// lecturer.
func (w *Workflow) MarkAllRead(lecturer string) {
	for i := range w.store.Notifications {
		if w.store.Notifications[i].Lecturer == lecturer {
			w.store.Notifications[i].Read = true
		}
	}
}
