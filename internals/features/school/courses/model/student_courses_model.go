// internals/features/school/courses/model/student_courses_model.go
package model

import (
	"github.com/google/uuid"
)

// Join table enrollment (many-to-many users <-> courses).
type StudentCourseModel struct {
	StudentCourseUserID   uuid.UUID `gorm:"column:student_course_user_id;type:uuid;primaryKey" json:"student_course_user_id"`
	StudentCourseCourseID uuid.UUID `gorm:"column:student_course_course_id;type:uuid;primaryKey" json:"student_course_course_id"`
}

func (StudentCourseModel) TableName() string {
	return "student_courses"
}
