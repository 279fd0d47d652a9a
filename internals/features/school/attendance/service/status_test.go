// internals/features/school/attendance/service/status_test.go
package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/helpers/dbtime"
)

func mustTod(t *testing.T, s string) dbtime.Tod {
	t.Helper()
	tod, err := dbtime.Parse(s)
	require.NoError(t, err)
	return tod
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	tod := mustTod(t, clock)
	return time.Date(2026, 9, 1, tod.Hour(), tod.Minute(), 0, 0, time.Local)
}

func TestDeriveStatusGracePeriod(t *testing.T) {
	start := mustTod(t, "08:00")

	// tepat waktu & dalam grace 15 menit => Present
	assert.Equal(t, model.AttendancePresent, DeriveStatus(at(t, "07:55"), start))
	assert.Equal(t, model.AttendancePresent, DeriveStatus(at(t, "08:00"), start))
	assert.Equal(t, model.AttendancePresent, DeriveStatus(at(t, "08:15"), start))

	// satu menit lewat grace => Late
	assert.Equal(t, model.AttendanceLate, DeriveStatus(at(t, "08:16"), start))
	assert.Equal(t, model.AttendanceLate, DeriveStatus(at(t, "10:30"), start))
}

func TestPromoteIfLateOnlyToday(t *testing.T) {
	start := mustTod(t, "08:00")
	now := at(t, "09:00")
	today := dbtime.DateStr(now)

	// Edit "Present" hari ini setelah grace => Late
	assert.Equal(t, model.AttendanceLate,
		PromoteIfLate(model.AttendancePresent, today, now, &start))

	// Tanggal lampau tidak dipromosikan
	assert.Equal(t, model.AttendancePresent,
		PromoteIfLate(model.AttendancePresent, "2026-08-25", now, &start))

	// Status selain Present tidak disentuh
	assert.Equal(t, model.AttendanceExcused,
		PromoteIfLate(model.AttendanceExcused, today, now, &start))

	// Tanpa jam mulai tidak ada dasar promosi
	assert.Equal(t, model.AttendancePresent,
		PromoteIfLate(model.AttendancePresent, today, now, nil))
}
