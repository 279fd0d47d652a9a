// internals/databases/migrations.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	AuditModel "presensiku_backend/internals/features/audit/model"
	AnnouncementModel "presensiku_backend/internals/features/school/announcements/model"
	AttendanceModel "presensiku_backend/internals/features/school/attendance/model"
	CourseModel "presensiku_backend/internals/features/school/courses/model"
	ExcuseModel "presensiku_backend/internals/features/school/excuses/model"
	RoomModel "presensiku_backend/internals/features/school/rooms/model"
	StudentModel "presensiku_backend/internals/features/school/students/model"
	UserModel "presensiku_backend/internals/features/users/users/model"
)

// schemaMigration: catatan versi skema yang sudah diterapkan.
type schemaMigration struct {
	Version   int       `gorm:"column:version;primaryKey"`
	AppliedAt time.Time `gorm:"column:applied_at;autoCreateTime"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	Version int
	Name    string
	Run     func(db *gorm.DB) error
}

// Urutan migrasi TIDAK boleh diubah setelah rilis; tambah versi baru di bawah.
var migrationList = []migration{
	{
		Version: 1,
		Name:    "core tables (users, rooms, courses, students)",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&UserModel.UserModel{},
				&RoomModel.RoomModel{},
				&CourseModel.CourseModel{},
				&CourseModel.StudentCourseModel{},
				&StudentModel.StudentDetailModel{},
				&StudentModel.AppMetaModel{},
			)
		},
	},
	{
		Version: 2,
		Name:    "attendance + sessions + excuses",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&AttendanceModel.AttendanceModel{},
				&AttendanceModel.AttendanceSessionModel{},
				&ExcuseModel.ExcuseModel{},
			)
		},
	},
	{
		Version: 3,
		Name:    "registration queues",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&UserModel.StudentRegistrationModel{},
				&UserModel.StaffRegistrationModel{},
			)
		},
	},
	{
		Version: 4,
		Name:    "audit logs + announcements",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&AuditModel.AuditLogModel{},
				&AnnouncementModel.AnnouncementModel{},
			)
		},
	},
}

// RunMigrations menjalankan migrasi yang belum tercatat, berurutan, satu
// transaksi per versi. Aman dipanggil berulang (idempotent).
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("migrations: init schema_migrations: %w", err)
	}

	applied := map[int]bool{}
	var rows []schemaMigration
	if err := db.Find(&rows).Error; err != nil {
		return fmt.Errorf("migrations: read schema_migrations: %w", err)
	}
	for _, r := range rows {
		applied[r.Version] = true
	}

	for _, m := range migrationList {
		if applied[m.Version] {
			continue
		}
		log.Printf("[MIGRATE] v%d: %s", m.Version, m.Name)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: m.Version}).Error
		})
		if err != nil {
			return fmt.Errorf("migrations: v%d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}
