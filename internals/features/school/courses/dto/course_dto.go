// internals/features/school/courses/dto/course_dto.go
package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"presensiku_backend/internals/features/school/courses/model"
	"presensiku_backend/internals/helpers/dbtime"
)

type CourseRequest struct {
	Code      string   `json:"code" validate:"required,max=20"`
	Name      string   `json:"name" validate:"required,max=100"`
	RoomID    *string  `json:"room_id" validate:"omitempty,uuid4"`
	StartTime string   `json:"start_time" validate:"omitempty,len=5"`
	EndTime   string   `json:"end_time" validate:"omitempty,len=5"`
	Days      []string `json:"days" validate:"omitempty,dive,oneof=Sun Mon Tue Wed Thu Fri Sat"`
}

func (r *CourseRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	for i := range r.Days {
		r.Days[i] = strings.TrimSpace(r.Days[i])
	}
}

// ToModel membangun CourseModel dari request yang sudah tervalidasi.
func (r *CourseRequest) ToModel() (*model.CourseModel, error) {
	out := &model.CourseModel{
		CourseCode: r.Code,
		CourseName: r.Name,
	}

	if r.RoomID != nil && *r.RoomID != "" {
		id, err := uuid.Parse(*r.RoomID)
		if err != nil {
			return nil, err
		}
		out.CourseRoomID = &id
	}
	if r.StartTime != "" {
		t, err := dbtime.Parse(r.StartTime)
		if err != nil {
			return nil, err
		}
		out.CourseStartTime = &t
	}
	if r.EndTime != "" {
		t, err := dbtime.Parse(r.EndTime)
		if err != nil {
			return nil, err
		}
		out.CourseEndTime = &t
	}
	if len(r.Days) > 0 {
		out.CourseDays = pq.StringArray(r.Days)
	}
	return out, nil
}

type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
}
