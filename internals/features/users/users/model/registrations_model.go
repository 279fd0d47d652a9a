// internals/features/users/users/model/registrations_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Antrian signup siswa — menunggu approval admin sebelum jadi user beneran.
type StudentRegistrationModel struct {
	StudentRegistrationID        uuid.UUID  `gorm:"column:student_registration_id;type:uuid;primaryKey" json:"student_registration_id"`
	StudentRegistrationName      string     `gorm:"column:student_registration_name;type:varchar(100);not null" json:"student_registration_name"`
	StudentRegistrationUsername  string     `gorm:"column:student_registration_username;type:varchar(64);not null;uniqueIndex:uq_student_registrations_username" json:"student_registration_username"`
	StudentRegistrationPassword  string     `gorm:"column:student_registration_password;type:varchar(100);not null" json:"-"`
	StudentRegistrationAge       int        `gorm:"column:student_registration_age;not null" json:"student_registration_age"`
	StudentRegistrationGender    string     `gorm:"column:student_registration_gender;type:varchar(16);not null" json:"student_registration_gender"`
	StudentRegistrationCourseID  *uuid.UUID `gorm:"column:student_registration_course_id;type:uuid" json:"student_registration_course_id,omitempty"`
	StudentRegistrationYearLevel *string    `gorm:"column:student_registration_year_level;type:varchar(16)" json:"student_registration_year_level,omitempty"`
	StudentRegistrationTimestamp time.Time  `gorm:"column:student_registration_timestamp;autoCreateTime" json:"student_registration_timestamp"`
}

func (StudentRegistrationModel) TableName() string {
	return "student_registrations"
}

func (m *StudentRegistrationModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentRegistrationID == uuid.Nil {
		m.StudentRegistrationID = uuid.New()
	}
	return nil
}

// Antrian signup staff (role default teacher).
type StaffRegistrationModel struct {
	StaffRegistrationID        uuid.UUID `gorm:"column:staff_registration_id;type:uuid;primaryKey" json:"staff_registration_id"`
	StaffRegistrationName      string    `gorm:"column:staff_registration_name;type:varchar(100);not null" json:"staff_registration_name"`
	StaffRegistrationUsername  string    `gorm:"column:staff_registration_username;type:varchar(64);not null;uniqueIndex:uq_staff_registrations_username" json:"staff_registration_username"`
	StaffRegistrationPassword  string    `gorm:"column:staff_registration_password;type:varchar(100);not null" json:"-"`
	StaffRegistrationRole      string    `gorm:"column:staff_registration_role;type:varchar(16);not null" json:"staff_registration_role"`
	StaffRegistrationTimestamp time.Time `gorm:"column:staff_registration_timestamp;autoCreateTime" json:"staff_registration_timestamp"`
}

func (StaffRegistrationModel) TableName() string {
	return "staff_registrations"
}

func (m *StaffRegistrationModel) BeforeCreate(tx *gorm.DB) error {
	if m.StaffRegistrationID == uuid.Nil {
		m.StaffRegistrationID = uuid.New()
	}
	return nil
}
