// internals/features/school/excuses/dto/excuse_dto.go
package dto

import "strings"

// SubmitExcuseRequest: pengajuan izin siswa untuk satu tanggal.
type SubmitExcuseRequest struct {
	Date   string `json:"date" validate:"required,len=10"`
	Reason string `json:"reason" validate:"required"`
}

func (r *SubmitExcuseRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

// UpdateExcuseRequest: koreksi staff atas izin yang masih Pending.
type UpdateExcuseRequest struct {
	Date   string `json:"date" validate:"required,len=10"`
	Reason string `json:"reason" validate:"required"`
}

func (r *UpdateExcuseRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}
