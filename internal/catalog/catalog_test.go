package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	require.Len(t, cat.Subjects, 5)
	require.Len(t, cat.Timetable, 5)

	// every timetabled code resolves, every subject has an owner
	for day, code := range cat.Timetable {
		assert.NotNil(t, cat.ByCode(code), "day %s points at unknown subject %s", day, code)
	}
	for _, sub := range cat.Subjects {
		assert.NotEmpty(t, sub.Lecturer)
		assert.Same(t, cat.ForLecturer(sub.Lecturer), cat.ByCode(sub.Code))
	}
}

func TestByCodeUnknown(t *testing.T) {
	assert.Nil(t, Default().ByCode("HNDIT 9999"))
	assert.Nil(t, Default().ForLecturer("nobody"))
}

func TestTodayText(t *testing.T) {
	cat := Default()

	tue := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC) // a Tuesday
	assert.Equal(t,
		"TUESDAY: HNDIT 1012 - Visual Application Programming | 08:00 to 15:00 | Lecturer: Mr. J. R. Jayasinghe",
		cat.TodayText(tue))

	sat := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "No class today (Weekend).", cat.TodayText(sat))
}
