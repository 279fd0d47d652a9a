// internals/features/school/attendance/service/status.go
package service

import (
	"time"

	"presensiku_backend/internals/configs"
	"presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/helpers/dbtime"
)

// DeriveStatus: Present jika now masih dalam (start + grace), selebihnya Late.
// Perbandingan murni jam-menit pada hari yang sama.
func DeriveStatus(now time.Time, start dbtime.Tod) model.AttendanceStatus {
	threshold := start.Minutes() + configs.LateGraceMinutes
	nowMinutes := now.Hour()*60 + now.Minute()
	if nowMinutes > threshold {
		return model.AttendanceLate
	}
	return model.AttendancePresent
}

// PromoteIfLate dipakai saat staff men-set "Present" manual: promosi ke Late
// hanya berlaku kalau tanggal record = hari ini (edit data lampau tidak
// boleh kena aturan telat berbasis jam server sekarang).
func PromoteIfLate(status model.AttendanceStatus, date string, now time.Time, start *dbtime.Tod) model.AttendanceStatus {
	if status != model.AttendancePresent || start == nil {
		return status
	}
	if date != dbtime.DateStr(now) {
		return status
	}
	return DeriveStatus(now, *start)
}
