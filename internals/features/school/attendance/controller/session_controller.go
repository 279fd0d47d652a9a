// internals/features/school/attendance/controller/session_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/school/attendance/dto"
	"presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/features/school/attendance/service"

	helper "presensiku_backend/internals/helpers"
	"presensiku_backend/internals/helpers/dbtime"
)

type SessionController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{DB: db, Validate: validator.New()}
}

// GET /api/attendance/sessions — 20 sesi terbaru + hitungan hadir/absen.
func (ctrl *SessionController) List(c *fiber.Ctx) error {
	var sessions []struct {
		ID           uuid.UUID   `json:"id"`
		Date         string      `json:"date"`
		StartTime    dbtime.Tod  `json:"start_time"`
		EndTime      *dbtime.Tod `json:"end_time"`
		Code         string      `json:"code"`
		RoomID       *uuid.UUID  `json:"room_id"`
		CourseID     uuid.UUID   `json:"course_id"`
		CourseName   string      `json:"course_name"`
		CourseCode   string      `json:"course_code"`
		RoomName     *string     `json:"room_name"`
		RoomNumber   *string     `json:"room_number"`
		CreatorName  *string     `json:"creator_name"`
		PresentCount int64       `json:"present_count"`
		AbsentCount  int64       `json:"absent_count"`
	}
	err := ctrl.DB.Table("attendance_sessions s").
		Select(`s.attendance_session_id AS id, s.attendance_session_date AS date,
			s.attendance_session_start_time AS start_time, s.attendance_session_end_time AS end_time,
			s.attendance_session_code AS code, s.attendance_session_room_id AS room_id,
			c.course_id, c.course_name, c.course_code,
			r.room_name, r.room_number, u.user_name AS creator_name,
			(SELECT COUNT(*) FROM attendance a
				WHERE a.attendance_course_id = s.attendance_session_course_id
				AND a.attendance_date = s.attendance_session_date
				AND a.attendance_status IN ('Present', 'Late')) AS present_count,
			(SELECT COUNT(*) FROM attendance a
				WHERE a.attendance_course_id = s.attendance_session_course_id
				AND a.attendance_date = s.attendance_session_date
				AND a.attendance_status = 'Absent') AS absent_count`).
		Joins("JOIN courses c ON c.course_id = s.attendance_session_course_id").
		Joins("LEFT JOIN rooms r ON r.room_id = s.attendance_session_room_id").
		Joins("LEFT JOIN users u ON u.user_id = s.attendance_session_created_by").
		Order("s.attendance_session_date DESC, s.attendance_session_start_time DESC").
		Limit(20).
		Scan(&sessions).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch sessions")
	}
	return helper.JsonOK(c, "ok", sessions)
}

// POST /api/attendance/session — idempotent per (course, date): sesi yang
// sudah ada cuma di-update jam/room-nya dan kode lamanya dikembalikan.
func (ctrl *SessionController) Open(c *fiber.Ctx) error {
	var req dto.OpenSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !dbtime.ValidDate(req.Date) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid date format")
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}
	startTime, err := dbtime.Parse(req.StartTime)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid start time")
	}
	var endTime *dbtime.Tod
	if req.EndTime != "" {
		t, err := dbtime.Parse(req.EndTime)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid end time")
		}
		endTime = &t
	}
	var roomID *uuid.UUID
	if req.RoomID != nil && *req.RoomID != "" {
		id, err := uuid.Parse(*req.RoomID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID")
		}
		roomID = &id
	}

	var existing model.AttendanceSessionModel
	err = ctrl.DB.Where("attendance_session_course_id = ? AND attendance_session_date = ?", courseID, req.Date).
		First(&existing).Error
	if err == nil {
		if err := ctrl.DB.Model(&model.AttendanceSessionModel{}).
			Where("attendance_session_id = ?", existing.AttendanceSessionID).
			Updates(map[string]interface{}{
				"attendance_session_start_time": startTime,
				"attendance_session_end_time":   endTime,
				"attendance_session_room_id":    roomID,
			}).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update session")
		}
		return helper.JsonOK(c, "Session updated", fiber.Map{"code": existing.AttendanceSessionCode})
	}
	if err != gorm.ErrRecordNotFound {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check session")
	}

	code, err := service.GenerateSessionCode(ctrl.DB)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to generate session code")
	}

	actor := actorFromLocals(c)
	session := model.AttendanceSessionModel{
		AttendanceSessionCourseID: courseID,
		AttendanceSessionDate:     req.Date,
		AttendanceSessionCode:     code,
		AttendanceSessionStart:    startTime,
		AttendanceSessionEnd:      endTime,
		AttendanceSessionRoomID:   roomID,
	}
	if actor.ID != uuid.Nil {
		createdBy := actor.ID
		session.AttendanceSessionCreatedBy = &createdBy
	}
	if err := ctrl.DB.Create(&session).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create session")
	}

	auditService.LogAction(ctrl.DB, actor, "CREATE_ATTENDANCE_SESSION",
		map[string]interface{}{"course_id": courseID, "date": req.Date, "code": code, "room_id": roomID})

	return helper.JsonOK(c, "Session created", fiber.Map{"code": code})
}

// PUT /api/attendance/sessions/:id — hanya jam mulai/selesai.
func (ctrl *SessionController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid session ID")
	}

	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	startTime, err := dbtime.Parse(req.StartTime)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid start time")
	}
	var endTime *dbtime.Tod
	if req.EndTime != "" {
		t, err := dbtime.Parse(req.EndTime)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid end time")
		}
		endTime = &t
	}

	res := ctrl.DB.Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_id = ?", id).
		Updates(map[string]interface{}{
			"attendance_session_start_time": startTime,
			"attendance_session_end_time":   endTime,
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update session")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Session not found.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "UPDATE_ATTENDANCE_SESSION",
		map[string]interface{}{"session_id": id, "start_time": req.StartTime, "end_time": req.EndTime})

	return helper.JsonUpdated(c, "Session updated.", nil)
}

// DELETE /api/attendance/sessions/:id — absensi course+tanggal sesi ikut
// terhapus (buka-tutup sesi yang salah bisa diulang dari nol).
func (ctrl *SessionController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid session ID")
	}

	var session model.AttendanceSessionModel
	if err := ctrl.DB.Where("attendance_session_id = ?", id).First(&session).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Session not found.")
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.AttendanceSessionModel{}, "attendance_session_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM attendance WHERE attendance_course_id = ? AND attendance_date = ?",
			session.AttendanceSessionCourseID, session.AttendanceSessionDate).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete session")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "DELETE_ATTENDANCE_SESSION",
		map[string]interface{}{"session_id": id, "code": session.AttendanceSessionCode})

	return helper.JsonDeleted(c, "Session deleted.", nil)
}
