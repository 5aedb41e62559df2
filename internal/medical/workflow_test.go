package medical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollbook/internal/catalog"
	"rollbook/internal/dateutil"
	"rollbook/internal/ledger"
	"rollbook/internal/store"
)

func newFixture(t *testing.T) (*store.Store, *Workflow) {
	t.Helper()
	st := store.New()
	st.Students["R001"] = store.Student{RegNo: "R001", Name: "Amara Silva"}
	w := NewWorkflow(st, catalog.Default())
	return st, w
}

func TestSubmitValidations(t *testing.T) {
	_, w := newFixture(t)

	_, err := w.Submit("R001", "ALL", "2026-03-10", "2026-03-05", "flu")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = w.Submit("R001", "ALL", "10-03-2026", "2026-03-12", "flu")
	assert.ErrorIs(t, err, dateutil.ErrInvalidDate)

	_, err = w.Submit("R404", "ALL", "2026-03-10", "2026-03-12", "flu")
	assert.ErrorIs(t, err, ledger.ErrUnknownStudent)
}

func TestSubmitRejectedLeavesNoTrace(t *testing.T) {
	st, w := newFixture(t)
	_, err := w.Submit("R001", "ALL", "2026-03-10", "2026-03-05", "flu")
	require.Error(t, err)
	assert.Empty(t, st.Medicals)
	assert.Empty(t, st.Notifications)
}

func TestSubmitAllScopeNotifiesEveryLecturer(t *testing.T) {
	st, w := newFixture(t)

	created, err := w.Submit("R001", "ALL", "2026-03-10", "2026-03-12", "flu")
	require.NoError(t, err)

	// one notification per catalog subject owner
	require.Len(t, created, 5)
	seen := map[string]bool{}
	for _, n := range created {
		seen[n.Lecturer] = true
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.Read)
		assert.Equal(t,
			"Medical submitted for R001 - Amara Silva | 2026-03-10 to 2026-03-12 | Subject: ALL | Adds +5% (max 100%).",
			n.Message)
	}
	for _, u := range []string{"lect1012", "lect1022", "lect1032", "lect1042", "lect1062"} {
		assert.True(t, seen[u], "missing notification for %s", u)
	}

	require.Len(t, st.Medicals, 1)
	assert.Equal(t, store.Medical{RegNo: "R001", Scope: "ALL", Start: "2026-03-10", End: "2026-03-12", Note: "flu"}, st.Medicals[0])
}

func TestSubmitSubjectScopeNotifiesOwnerOnly(t *testing.T) {
	_, w := newFixture(t)

	created, err := w.Submit("R001", "HNDIT 1032", "2026-03-10", "2026-03-10", "")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "lect1032", created[0].Lecturer)
	assert.Contains(t, created[0].Message, "Subject: HNDIT 1032")
}

func TestSingleDayRangeIsValid(t *testing.T) {
	st, w := newFixture(t)
	_, err := w.Submit("R001", "ALL", "2026-03-10", "2026-03-10", "")
	require.NoError(t, err)
	assert.Len(t, st.Medicals, 1)
}

func TestDeleteMatchesExactTuple(t *testing.T) {
	st, w := newFixture(t)
	_, err := w.Submit("R001", "ALL", "2026-03-10", "2026-03-12", "first")
	require.NoError(t, err)
	_, err = w.Submit("R001", "ALL", "2026-03-10", "2026-03-12", "second")
	require.NoError(t, err)
	_, err = w.Submit("R001", "HNDIT 1012", "2026-03-10", "2026-03-12", "third")
	require.NoError(t, err)
	notifsBefore := len(st.Notifications)

	// removes every exact match regardless of note
	removed := w.Delete("R001", "ALL", "2026-03-10", "2026-03-12")
	assert.Equal(t, 2, removed)
	require.Len(t, st.Medicals, 1)
	assert.Equal(t, "HNDIT 1012", st.Medicals[0].Scope)

	// notifications are never retracted
	assert.Len(t, st.Notifications, notifsBefore)

	assert.Zero(t, w.Delete("R001", "ALL", "2026-03-10", "2026-03-12"))
}

func TestForOrdersNewestFirst(t *testing.T) {
	_, w := newFixture(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	w.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	_, err := w.Submit("R001", "HNDIT 1012", "2026-03-10", "2026-03-10", "older")
	require.NoError(t, err)
	_, err = w.Submit("R001", "HNDIT 1012", "2026-03-11", "2026-03-11", "newer")
	require.NoError(t, err)

	list := w.For("lect1012")
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	assert.Contains(t, list[0].Message, "2026-03-11")

	assert.Empty(t, w.For("lect1022"))
}

func TestMarkAllRead(t *testing.T) {
	st, w := newFixture(t)
	_, err := w.Submit("R001", "ALL", "2026-03-10", "2026-03-12", "")
	require.NoError(t, err)

	w.MarkAllRead("lect1012")

	for _, n := range st.Notifications {
		if n.Lecturer == "lect1012" {
			assert.True(t, n.Read)
		} else {
			assert.False(t, n.Read)
		}
	}
}
