// internals/features/school/attendance/scheduler/auto_absent.go
package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	attendanceModel "presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/features/school/attendance/service"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	"presensiku_backend/internals/helpers/dbtime"
)

// AutoAbsentScheduler menutup absensi: setelah jam selesai efektif lewat,
// siswa terdaftar yang belum punya record hari itu diisi Absent.
// Tidak pernah menurunkan status yang sudah ada (insert-only lewat
// EnsureRows).
type AutoAbsentScheduler struct {
	db       *gorm.DB
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewAutoAbsentScheduler(db *gorm.DB, interval time.Duration) *AutoAbsentScheduler {
	return &AutoAbsentScheduler{db: db, interval: interval}
}

// Start menjalankan sweep pertama segera, lalu tiap interval.
// Panggilan kedua tanpa Stop adalah no-op.
func (s *AutoAbsentScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		s.sweep(time.Now())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now())
			case <-stop:
				return
			}
		}
	}(s.stop, s.done)
}

// Stop menghentikan loop dan menunggu sweep yang sedang jalan selesai.
func (s *AutoAbsentScheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (s *AutoAbsentScheduler) sweep(now time.Time) {
	if n, err := s.RunOnce(now); err != nil {
		log.Printf("[AUTO-ABSENT] sweep gagal: %v", err)
	} else if n > 0 {
		log.Printf("[AUTO-ABSENT] %d record Absent dibuat", n)
	}
}

// RunOnce mengevaluasi semua course terhadap waktu `now` dan mengisi
// record Absent yang hilang. Deterministik, dipakai juga oleh test.
//
// Aturan jam selesai efektif: sesi hari ini menang atas jadwal berulang;
// sesi tanpa end_time memakai end_time course. Course tanpa sesi hari ini
// hanya dicek kalau jadwal berulangnya mencakup hari ini.
func (s *AutoAbsentScheduler) RunOnce(now time.Time) (int64, error) {
	today := dbtime.DateStr(now)
	dayTag := dbtime.WeekdayTag(now)
	nowClock := now.Format("15:04")

	var courses []courseModel.CourseModel
	if err := s.db.Find(&courses).Error; err != nil {
		return 0, err
	}

	var sessions []attendanceModel.AttendanceSessionModel
	if err := s.db.Where("attendance_session_date = ?", today).Find(&sessions).Error; err != nil {
		return 0, err
	}
	sessionByCourse := make(map[uuid.UUID]attendanceModel.AttendanceSessionModel, len(sessions))
	for _, sess := range sessions {
		sessionByCourse[sess.AttendanceSessionCourseID] = sess
	}

	var due []uuid.UUID
	for _, c := range courses {
		var effectiveEnd *dbtime.Tod
		if sess, ok := sessionByCourse[c.CourseID]; ok {
			effectiveEnd = c.CourseEndTime
			if sess.AttendanceSessionEnd != nil {
				effectiveEnd = sess.AttendanceSessionEnd
			}
		} else {
			if c.CourseEndTime == nil || !c.MeetsOn(dayTag) {
				continue
			}
			effectiveEnd = c.CourseEndTime
		}

		if effectiveEnd == nil {
			continue
		}
		if nowClock > effectiveEnd.Clock() {
			due = append(due, c.CourseID)
		}
	}

	return service.EnsureRows(s.db, due, today)
}
