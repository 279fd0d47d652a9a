// internals/features/school/courses/service/conflict_test.go
package service

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"presensiku_backend/internals/features/school/courses/model"
	roomModel "presensiku_backend/internals/features/school/rooms/model"
	"presensiku_backend/internals/helpers/dbtime"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&roomModel.RoomModel{}, &model.CourseModel{}))
	return db
}

func tod(t *testing.T, s string) *dbtime.Tod {
	t.Helper()
	v, err := dbtime.Parse(s)
	require.NoError(t, err)
	return &v
}

func scheduled(t *testing.T, db *gorm.DB, code string, room uuid.UUID, days []string, start, end string) model.CourseModel {
	t.Helper()
	c := model.CourseModel{
		CourseCode:      code,
		CourseName:      code,
		CourseRoomID:    &room,
		CourseDays:      pq.StringArray(days),
		CourseStartTime: tod(t, start),
		CourseEndTime:   tod(t, end),
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestHasScheduleConflict(t *testing.T) {
	db := newTestDB(t)

	roomA := roomModel.RoomModel{RoomName: "Lab", RoomNumber: "1"}
	roomB := roomModel.RoomModel{RoomName: "Aula", RoomNumber: "2"}
	require.NoError(t, db.Create(&roomA).Error)
	require.NoError(t, db.Create(&roomB).Error)

	scheduled(t, db, "BASE", roomA.RoomID, []string{"Mon", "Wed"}, "08:00", "10:00")

	cases := []struct {
		name  string
		room  uuid.UUID
		days  []string
		start string
		end   string
		want  bool
	}{
		{"overlap di tengah", roomA.RoomID, []string{"Mon"}, "09:00", "11:00", true},
		{"membungkus penuh", roomA.RoomID, []string{"Wed"}, "07:00", "12:00", true},
		{"back-to-back tidak bentrok", roomA.RoomID, []string{"Mon"}, "10:00", "12:00", false},
		{"hari beda", roomA.RoomID, []string{"Tue"}, "08:00", "10:00", false},
		{"room beda", roomB.RoomID, []string{"Mon"}, "08:00", "10:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room := tc.room
			candidate := model.CourseModel{
				CourseRoomID:    &room,
				CourseDays:      pq.StringArray(tc.days),
				CourseStartTime: tod(t, tc.start),
				CourseEndTime:   tod(t, tc.end),
			}
			got, err := HasScheduleConflict(db, &candidate, nil)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestHasScheduleConflictExcludesSelf(t *testing.T) {
	db := newTestDB(t)

	room := roomModel.RoomModel{RoomName: "Lab", RoomNumber: "1"}
	require.NoError(t, db.Create(&room).Error)

	existing := scheduled(t, db, "SELF", room.RoomID, []string{"Fri"}, "13:00", "15:00")

	// Update course yang sama tidak boleh bentrok dengan dirinya sendiri
	got, err := HasScheduleConflict(db, &existing, &existing.CourseID)
	require.NoError(t, err)
	require.False(t, got)
}

func TestHasScheduleConflictIgnoresPartialSchedule(t *testing.T) {
	db := newTestDB(t)

	room := roomModel.RoomModel{RoomName: "Lab", RoomNumber: "1"}
	require.NoError(t, db.Create(&room).Error)
	scheduled(t, db, "BASE", room.RoomID, []string{"Mon"}, "08:00", "10:00")

	// Tanpa jam / hari lengkap => tidak ada dasar konflik
	partial := model.CourseModel{CourseRoomID: &room.RoomID}
	got, err := HasScheduleConflict(db, &partial, nil)
	require.NoError(t, err)
	require.False(t, got)
}
