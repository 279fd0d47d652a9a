// internals/features/school/courses/service/conflict.go
package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/school/courses/model"
)

// HasScheduleConflict cek apakah jadwal baru (room + jam + hari) tabrakan
// dengan course lain di room yang sama. Overlap waktu pakai aturan
// (StartA < EndB) && (EndA > StartB); perbandingan "HH:MM" leksikografis.
func HasScheduleConflict(db *gorm.DB, course *model.CourseModel, excludeID *uuid.UUID) (bool, error) {
	if course.CourseRoomID == nil || course.CourseStartTime == nil ||
		course.CourseEndTime == nil || len(course.CourseDays) == 0 {
		return false, nil
	}

	q := db.Where("course_room_id = ?", *course.CourseRoomID)
	if excludeID != nil {
		q = q.Where("course_id != ?", *excludeID)
	}

	var existing []model.CourseModel
	if err := q.Find(&existing).Error; err != nil {
		return false, err
	}

	newStart := course.CourseStartTime.Clock()
	newEnd := course.CourseEndTime.Clock()

	for _, other := range existing {
		if other.CourseStartTime == nil || other.CourseEndTime == nil || len(other.CourseDays) == 0 {
			continue
		}

		daysOverlap := false
		for _, d := range course.CourseDays {
			if other.MeetsOn(d) {
				daysOverlap = true
				break
			}
		}
		if !daysOverlap {
			continue
		}

		if newStart < other.CourseEndTime.Clock() && newEnd > other.CourseStartTime.Clock() {
			return true, nil
		}
	}
	return false, nil
}
