// internals/features/school/rooms/controller/room_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/school/rooms/dto"
	"presensiku_backend/internals/features/school/rooms/model"

	helper "presensiku_backend/internals/helpers"
	"presensiku_backend/internals/helpers/dbtime"
)

type RoomController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewRoomController(db *gorm.DB) *RoomController {
	return &RoomController{DB: db, Validate: validator.New()}
}

func actorFromLocals(c *fiber.Ctx) auditService.Actor {
	a := auditService.Actor{}
	if v, ok := c.Locals("user_id").(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			a.ID = id
		}
	}
	if v, ok := c.Locals("user_name").(string); ok {
		a.Name = v
	}
	if v, ok := c.Locals("userRole").(string); ok {
		a.Role = v
	}
	return a
}

// GET /api/rooms
func (ctrl *RoomController) List(c *fiber.Ctx) error {
	var rooms []model.RoomModel
	if err := ctrl.DB.Order("room_name").Find(&rooms).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch rooms")
	}
	return helper.JsonOK(c, "ok", rooms)
}

// GET /api/rooms/:id/schedule — jadwal berulang course di room ini.
func (ctrl *RoomController) Schedule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID")
	}

	var courses []struct {
		Code      string         `json:"code"`
		Name      string         `json:"name"`
		StartTime *dbtime.Tod    `json:"start_time"`
		EndTime   *dbtime.Tod    `json:"end_time"`
		Days      pq.StringArray `gorm:"type:text[]" json:"days"`
	}
	err = ctrl.DB.Table("courses").
		Select(`course_code AS code, course_name AS name,
			course_start_time AS start_time, course_end_time AS end_time,
			course_days AS days`).
		Where("course_room_id = ?", id).
		Scan(&courses).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch schedule")
	}
	return helper.JsonOK(c, "ok", courses)
}

// POST /api/rooms
func (ctrl *RoomController) Create(c *fiber.Ctx) error {
	var req dto.RoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	room := model.RoomModel{RoomName: req.Name, RoomNumber: req.RoomNumber}
	if err := ctrl.DB.Create(&room).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "A room with this name and number already exists.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create room")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "CREATE_ROOM",
		map[string]interface{}{"name": req.Name, "room_number": req.RoomNumber})

	return helper.JsonCreated(c, "Room created", room)
}

// PUT /api/rooms/:id
func (ctrl *RoomController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID")
	}

	var req dto.RoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var dup int64
	if err := ctrl.DB.Model(&model.RoomModel{}).
		Where("room_name = ? AND room_number = ? AND room_id != ?", req.Name, req.RoomNumber, id).
		Count(&dup).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check room")
	}
	if dup > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "A room with this name and number already exists.")
	}

	res := ctrl.DB.Model(&model.RoomModel{}).
		Where("room_id = ?", id).
		Updates(map[string]interface{}{
			"room_name":   req.Name,
			"room_number": req.RoomNumber,
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update room")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Room not found.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "UPDATE_ROOM",
		map[string]interface{}{"id": id, "name": req.Name, "room_number": req.RoomNumber})

	return helper.JsonUpdated(c, "Room updated", nil)
}

// DELETE /api/rooms/:id — course yang memakai room ini kehilangan room
// defaultnya (SET NULL), tidak ikut terhapus.
func (ctrl *RoomController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID")
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE courses SET course_room_id = NULL WHERE course_room_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE attendance_sessions SET attendance_session_room_id = NULL WHERE attendance_session_room_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.RoomModel{}, "room_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return helper.JsonError(c, fiber.StatusNotFound, "Room not found.")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete room")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "DELETE_ROOM",
		map[string]interface{}{"id": id})

	return helper.JsonDeleted(c, "Room deleted", nil)
}
