package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	g := NewFileGateway(filepath.Join(t.TempDir(), "does-not-exist.json"))

	st, err := g.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Empty(t, st.Students)
	assert.Empty(t, st.Holidays)
	assert.Empty(t, st.Medicals)
	assert.Empty(t, st.Notifications)
	assert.Empty(t, st.StudentAttendance)
	assert.Empty(t, st.LecturerAttendance)
}

func TestLoadCorruptFileRecoversAndKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance-data.json")
	garbage := []byte("{not json at all")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	g := NewFileGateway(path)
	st, err := g.Load(context.Background())

	// downgraded: usable empty store plus a distinguishable warning
	assert.ErrorIs(t, err, ErrCorrupt)
	require.NotNil(t, st)
	assert.Empty(t, st.Students)

	// the bad file is left on disk untouched
	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, garbage, data)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attendance-data.json")
	g := NewFileGateway(path)

	st := New()
	st.Students["R001"] = Student{RegNo: "R001", Name: "Amara Silva"}
	st.Holidays["2026-04-13"] = true
	st.Medicals = append(st.Medicals, Medical{RegNo: "R001", Scope: "ALL", Start: "2026-03-10", End: "2026-03-12", Note: "flu"})
	st.StudentAttendance[CellKey("HNDIT 1012", "2026-03-03")] = map[string]Status{"R001": Present}
	st.LecturerAttendance[CellKey("HNDIT 1012", "2026-03-03")] = map[string]Status{"lect1012": Absent}

	require.NoError(t, g.Save(context.Background(), st))

	loaded, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st.Students, loaded.Students)
	assert.Equal(t, st.Holidays, loaded.Holidays)
	assert.Equal(t, st.Medicals, loaded.Medicals)
	assert.Equal(t, st.StudentAttendance, loaded.StudentAttendance)
	assert.Equal(t, st.LecturerAttendance, loaded.LecturerAttendance)

	// no temp files left behind by the rename dance
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance-data.json")
	g := NewFileGateway(path)

	first := New()
	first.Students["R001"] = Student{RegNo: "R001", Name: "Amara Silva"}
	require.NoError(t, g.Save(context.Background(), first))

	second := New()
	second.Students["R002"] = Student{RegNo: "R002", Name: "Bandu Perera"}
	require.NoError(t, g.Save(context.Background(), second))

	loaded, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Students, 1)
	_, ok := loaded.Students["R002"]
	assert.True(t, ok)
}

func TestCellKeyRoundTrip(t *testing.T) {
	key := CellKey("HNDIT 1012", "2026-03-03")
	code, date := SplitCellKey(key)
	assert.Equal(t, "HNDIT 1012", code)
	assert.Equal(t, "2026-03-03", date)
}

func TestSortedStudents(t *testing.T) {
	st := New()
	st.Students["R003"] = Student{RegNo: "R003", Name: "C"}
	st.Students["R001"] = Student{RegNo: "R001", Name: "A"}
	st.Students["R002"] = Student{RegNo: "R002", Name: "B"}

	got := st.SortedStudents()
	require.Len(t, got, 3)
	assert.Equal(t, "R001", got[0].RegNo)
	assert.Equal(t, "R002", got[1].RegNo)
	assert.Equal(t, "R003", got[2].RegNo)
}
