// internals/features/school/students/model/student_details_model.go
package model

import (
	"github.com/google/uuid"
)

// StudentDetailModel: 1:1 dengan users (role student).
// student_code unik global, format YYYY-NNN atau kode manual.
type StudentDetailModel struct {
	StudentDetailUserID      uuid.UUID `gorm:"column:student_detail_user_id;type:uuid;primaryKey" json:"student_detail_user_id"`
	StudentDetailStudentCode string    `gorm:"column:student_detail_student_code;type:varchar(20);not null;uniqueIndex:uq_student_details_code" json:"student_detail_student_code"`
	StudentDetailAge         int       `gorm:"column:student_detail_age;not null" json:"student_detail_age"`
	StudentDetailGender      string    `gorm:"column:student_detail_gender;type:varchar(16);not null" json:"student_detail_gender"`
	StudentDetailYearLevel   *string   `gorm:"column:student_detail_year_level;type:varchar(16)" json:"student_detail_year_level,omitempty"`
}

func (StudentDetailModel) TableName() string {
	return "student_details"
}
