// internals/features/school/rooms/dto/room_dto.go
package dto

import "strings"

type RoomRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	RoomNumber string `json:"room_number" validate:"required,max=20"`
}

func (r *RoomRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.RoomNumber = strings.TrimSpace(r.RoomNumber)
}
