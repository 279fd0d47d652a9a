// internals/features/users/auth/dto/auth_dto.go
package dto

import "strings"

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// SetupRequest: pembuatan akun admin pertama (hanya saat setup mode).
type SetupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *SetupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
}

type RequestPasswordResetRequest struct {
	Username string `json:"username" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Klaim akun siswa: validasi kode dulu, lalu set kredensial.
type StudentSetupValidateRequest struct {
	StudentCode string `json:"student_code" validate:"required"`
}

type StudentSetupCompleteRequest struct {
	StudentCode string `json:"student_code" validate:"required"`
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Password    string `json:"password" validate:"required,min=6"`
}

func (r *StudentSetupCompleteRequest) Normalize() {
	r.StudentCode = strings.TrimSpace(r.StudentCode)
	r.Username = strings.TrimSpace(r.Username)
}

// SessionUser: payload identitas yang dikirim ke frontend.
type SessionUser struct {
	ID          string  `json:"id"`
	Username    *string `json:"username"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	StudentCode string  `json:"student_code,omitempty"`
}
