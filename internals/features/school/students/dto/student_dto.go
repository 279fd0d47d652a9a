// internals/features/school/students/dto/student_dto.go
package dto

import "strings"

type CreateStudentRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Age         int     `json:"age" validate:"required,gt=0,lt=150"`
	Gender      string  `json:"gender" validate:"required,max=16"`
	YearLevel   *string `json:"year_level" validate:"omitempty,max=16"`
	StudentCode string  `json:"student_code" validate:"omitempty,max=20"`
}

func (r *CreateStudentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.StudentCode = strings.TrimSpace(r.StudentCode)
}

type UpdateStudentRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Age         int     `json:"age" validate:"required,gt=0,lt=150"`
	Gender      string  `json:"gender" validate:"required,max=16"`
	YearLevel   *string `json:"year_level" validate:"omitempty,max=16"`
	StudentCode string  `json:"student_code" validate:"omitempty,max=20"`
}

func (r *UpdateStudentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.StudentCode = strings.TrimSpace(r.StudentCode)
}

// StudentRow: baris list siswa (join users + student_details).
type StudentRow struct {
	Username    *string `json:"username"`
	Name        string  `json:"name"`
	StudentCode string  `json:"student_code"`
	Age         int     `json:"age"`
	Gender      string  `json:"gender"`
	YearLevel   *string `json:"year_level"`
}

// CSVRowError: error per baris saat bulk import.
type CSVRowError struct {
	Student string `json:"student"`
	Error   string `json:"error"`
}
