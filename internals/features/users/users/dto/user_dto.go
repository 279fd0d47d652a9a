// internals/features/users/users/dto/user_dto.go
package dto

import "strings"

type CreateStaffRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=teacher registrar"`
}

func (r *CreateStaffRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
}

type StudentSignupRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=6"`
	Age       int    `json:"age" validate:"required,gt=0,lt=150"`
	Gender    string `json:"gender" validate:"required,max=16"`
	CourseID  string `json:"course_id" validate:"required,uuid4"`
	YearLevel string `json:"year_level" validate:"required,max=16"`
}

func (r *StudentSignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
	r.Gender = strings.TrimSpace(r.Gender)
}

type StaffSignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *StaffSignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
}
