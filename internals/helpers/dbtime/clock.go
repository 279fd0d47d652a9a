// file: internals/helpers/dbtime/clock.go
package dbtime

import "time"

// Placeholder untuk kolom time di baris absensi yang belum di-mark.
const TimePlaceholder = "--"

const dateLayout = "2006-01-02"

// DateStr: "YYYY-MM-DD" — format tanggal di seluruh tabel (TEXT, bukan DATE,
// supaya BETWEEN dan perbandingan string tetap leksikografis seperti aslinya).
func DateStr(t time.Time) string { return t.Format(dateLayout) }

// Today: tanggal server hari ini.
func Today() string { return DateStr(time.Now()) }

// ValidDate cek format "YYYY-MM-DD".
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// BeforeToday: true jika s jatuh sebelum hari ini (kalender lokal).
func BeforeToday(s string) bool {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today)
}

// WeekdayTag: tag hari singkat ("Sun".."Sat") seperti yang disimpan di
// courses.days.
func WeekdayTag(t time.Time) string { return t.Format("Mon") }
