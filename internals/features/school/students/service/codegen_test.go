// internals/features/school/students/service/codegen_test.go
package service

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"presensiku_backend/internals/features/school/students/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.StudentDetailModel{},
		&model.AppMetaModel{},
	))
	return db
}

func TestAllocateStudentCodeSequence(t *testing.T) {
	db := newTestDB(t)

	code, err := AllocateStudentCode(db, 2026)
	require.NoError(t, err)
	require.Equal(t, "2026-001", code)

	code, err = AllocateStudentCode(db, 2026)
	require.NoError(t, err)
	require.Equal(t, "2026-002", code)

	// Tahun berbeda punya counter sendiri
	code, err = AllocateStudentCode(db, 2027)
	require.NoError(t, err)
	require.Equal(t, "2027-001", code)
}

func TestAllocateStudentCodeSkipsTaken(t *testing.T) {
	db := newTestDB(t)

	// Kode hasil impor manual menempati slot 001
	require.NoError(t, db.Create(&model.StudentDetailModel{
		StudentDetailUserID:      uuid.New(),
		StudentDetailStudentCode: "2026-001",
	}).Error)

	code, err := AllocateStudentCode(db, 2026)
	require.NoError(t, err)
	require.Equal(t, "2026-002", code)

	// Counter ikut maju melewati slot terpakai
	var meta model.AppMetaModel
	require.NoError(t, db.Where("app_meta_key = ?", "last_student_seq_2026").First(&meta).Error)
	require.Equal(t, 2, meta.AppMetaValue)
}
