// internals/features/school/attendance/controller/attendance_controller.go
package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/school/attendance/dto"
	"presensiku_backend/internals/features/school/attendance/model"
	"presensiku_backend/internals/features/school/attendance/service"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	excuseModel "presensiku_backend/internals/features/school/excuses/model"

	"presensiku_backend/internals/constants"
	helper "presensiku_backend/internals/helpers"
	"presensiku_backend/internals/helpers/dbtime"
)

type AttendanceController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Validate: validator.New()}
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

type rosterRow struct {
	ID          uuid.UUID  `json:"id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      string     `json:"status"`
	StudentCode string     `json:"student_code"`
	Name        string     `json:"name"`
	YearLevel   *string    `json:"year_level"`
	RoomID      *uuid.UUID `json:"room_id"`
	CourseCode  string     `json:"course_code"`
}

// GET /api/attendance/:date?course_id=&room_id=&year_level=
// Rekonsiliasi dulu (baris Absent untuk siswa tanpa record) lalu baca
// roster lengkap. Scope wajib course atau room.
func (ctrl *AttendanceController) Roster(c *fiber.Ctx) error {
	date := c.Params("date")
	if !dbtime.ValidDate(date) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid date format")
	}

	courseIDStr := strings.TrimSpace(c.Query("course_id"))
	roomIDStr := strings.TrimSpace(c.Query("room_id"))
	yearLevel := strings.TrimSpace(c.Query("year_level"))

	if courseIDStr == "" && roomIDStr == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Course ID or Room ID is required.")
	}

	var targetCourses []uuid.UUID
	var roomID uuid.UUID
	if courseIDStr != "" {
		cid, err := uuid.Parse(courseIDStr)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
		}
		targetCourses = []uuid.UUID{cid}
	} else {
		var err error
		roomID, err = uuid.Parse(roomIDStr)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID")
		}
		targetCourses, err = service.CoursesInRoom(ctrl.DB, roomID, date)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to resolve room courses")
		}
	}

	if _, err := service.EnsureRows(ctrl.DB, targetCourses, date); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to prepare attendance records")
	}

	q := ctrl.DB.Table("attendance a").
		Select(`a.attendance_id AS id, a.attendance_date AS date, a.attendance_time AS time,
			a.attendance_status AS status, sd.student_detail_student_code AS student_code,
			u.user_name AS name, sd.student_detail_year_level AS year_level,
			COALESCE(s.attendance_session_room_id, c.course_room_id) AS room_id,
			c.course_code`).
		Joins("JOIN users u ON u.user_id = a.attendance_user_id").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Joins("JOIN courses c ON c.course_id = a.attendance_course_id").
		Joins(`LEFT JOIN attendance_sessions s
			ON s.attendance_session_course_id = a.attendance_course_id
			AND s.attendance_session_date = a.attendance_date`).
		Where("a.attendance_date = ?", date)

	if courseIDStr != "" {
		q = q.Where("a.attendance_course_id = ?", targetCourses[0])
	}
	if roomIDStr != "" {
		q = q.Where(`s.attendance_session_room_id = ?
			OR (s.attendance_session_room_id IS NULL AND c.course_room_id = ?)`, roomID, roomID)
	}
	if yearLevel != "" {
		q = q.Where("sd.student_detail_year_level = ?", yearLevel)
	}

	var rows []rosterRow
	if err := q.Order("c.course_code, sd.student_detail_student_code").Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch attendance")
	}
	return helper.JsonOK(c, "ok", rows)
}

// PUT /api/attendance — edit manual staff. "Present" pada hari ini tetap
// kena promosi Late kalau sudah lewat grace period.
func (ctrl *AttendanceController) UpdateRecord(c *fiber.Ctx) error {
	var req dto.UpdateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	now := time.Now()
	status := model.AttendanceStatus(req.Status)

	markTime := dbtime.TimePlaceholder
	if status == model.AttendancePresent || status == model.AttendanceLate {
		markTime = now.Format("15:04")
	}

	if status == model.AttendancePresent {
		var start *dbtime.Tod
		if req.SessionStartTime != "" {
			if t, err := dbtime.Parse(req.SessionStartTime); err == nil {
				start = &t
			}
		} else {
			var course courseModel.CourseModel
			if err := ctrl.DB.Where("course_id = ?", courseID).First(&course).Error; err == nil {
				start = course.CourseStartTime
			}
		}
		status = service.PromoteIfLate(status, req.Date, now, start)
	}

	var userID uuid.UUID
	err = ctrl.DB.Table("users u").
		Select("u.user_id").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("sd.student_detail_student_code = ?", req.StudentCode).
		Scan(&userID).Error
	if err != nil || userID == uuid.Nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found.")
	}

	res := ctrl.DB.Model(&model.AttendanceModel{}).
		Where("attendance_date = ? AND attendance_user_id = ? AND attendance_course_id = ?",
			req.Date, userID, courseID).
		Updates(map[string]interface{}{
			"attendance_status": status,
			"attendance_time":   markTime,
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update attendance")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Attendance record not found.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "UPDATE_ATTENDANCE",
		map[string]interface{}{"student_code": req.StudentCode, "date": req.Date, "status": status, "course_id": courseID})

	return helper.JsonUpdated(c, "Attendance updated.", nil)
}

// POST /api/student/attendance/mark — self-mark via kode sesi.
// Kode salah 404, kode bukan untuk hari ini 400. Status dihitung dari
// jam mulai sesi + grace period. Upsert: mark ulang menimpa waktu & status.
func (ctrl *AttendanceController) MarkByCode(c *fiber.Ctx) error {
	var req dto.MarkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var session model.AttendanceSessionModel
	if err := ctrl.DB.Where("attendance_session_code = ?", req.Code).First(&session).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Invalid attendance code.")
	}

	if session.AttendanceSessionDate != dbtime.Today() {
		return helper.JsonError(c, fiber.StatusBadRequest, "This attendance code is not for today.")
	}

	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	now := time.Now()
	status := service.DeriveStatus(now, session.AttendanceSessionStart)

	row := model.AttendanceModel{
		AttendanceUserID:   userID,
		AttendanceCourseID: session.AttendanceSessionCourseID,
		AttendanceDate:     session.AttendanceSessionDate,
		AttendanceTime:     now.Format("15:04"),
		AttendanceStatus:   status,
	}
	err = ctrl.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "attendance_user_id"},
			{Name: "attendance_course_id"},
			{Name: "attendance_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"attendance_time", "attendance_status"}),
	}).Create(&row).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to mark attendance")
	}

	return helper.JsonOK(c, fmt.Sprintf("Attendance marked as %s.", status), fiber.Map{"status": status})
}

// GET /api/attendance/:date/csv?course_id= — export roster sebagai CSV.
func (ctrl *AttendanceController) ExportCSV(c *fiber.Ctx) error {
	date := c.Params("date")
	courseIDStr := strings.TrimSpace(c.Query("course_id"))
	if courseIDStr == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Course ID is required")
	}
	courseID, err := uuid.Parse(courseIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var records []struct {
		StudentCode string
		Name        string
		Time        string
		Status      string
		RoomName    *string
		RoomNumber  *string
	}
	err = ctrl.DB.Table("attendance a").
		Select(`sd.student_detail_student_code AS student_code, u.user_name AS name,
			a.attendance_time AS time, a.attendance_status AS status,
			r.room_name, r.room_number`).
		Joins("JOIN users u ON u.user_id = a.attendance_user_id").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Joins("JOIN courses c ON c.course_id = a.attendance_course_id").
		Joins("LEFT JOIN rooms r ON r.room_id = c.course_room_id").
		Where("a.attendance_date = ? AND a.attendance_course_id = ?", date, courseID).
		Order("sd.student_detail_student_code").
		Scan(&records).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to export attendance")
	}

	var b strings.Builder
	b.WriteString("\"Code\",\"Name\",\"Time\",\"Status\",\"Room Name\",\"Room Number\"\n")
	for _, r := range records {
		roomName, roomNumber := "", ""
		if r.RoomName != nil {
			roomName = *r.RoomName
		}
		if r.RoomNumber != nil {
			roomNumber = *r.RoomNumber
		}
		fmt.Fprintf(&b, "\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\"\n",
			r.StudentCode, r.Name, r.Time, r.Status, roomName, roomNumber)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance-%s.csv"`, date))
	return c.SendString(b.String())
}

// GET /api/dashboard-summary — total siswa, izin pending, rekap hari ini.
func (ctrl *AttendanceController) DashboardSummary(c *fiber.Ctx) error {
	today := dbtime.Today()

	var totalStudents int64
	if err := ctrl.DB.Table("users").
		Where("user_role = ?", constants.RoleStudent).
		Count(&totalStudents).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count students")
	}

	var pendingExcuses int64
	if err := ctrl.DB.Model(&excuseModel.ExcuseModel{}).
		Where("excuse_status = ?", excuseModel.ExcusePending).
		Count(&pendingExcuses).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count excuses")
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := ctrl.DB.Table("attendance").
		Select("attendance_status AS status, COUNT(*) AS count").
		Where("attendance_date = ?", today).
		Group("attendance_status").
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to summarize attendance")
	}

	summary := map[string]int64{"Present": 0, "Late": 0, "Absent": 0, "Excused": 0}
	for _, r := range rows {
		if _, ok := summary[r.Status]; ok {
			summary[r.Status] = r.Count
		}
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"totalStudents":  totalStudents,
		"pendingExcuses": pendingExcuses,
		"todaysSummary":  summary,
	})
}

// GET /api/student/attendance-history — riwayat siswa yang sedang login,
// lengkap dengan course, pengajar pembuka sesi, dan room efektif.
func (ctrl *AttendanceController) MyHistory(c *fiber.Ctx) error {
	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	var records []struct {
		Date        string  `json:"date"`
		Time        string  `json:"time"`
		Status      string  `json:"status"`
		Code        *string `json:"code"`
		Name        *string `json:"name"`
		TeacherName *string `json:"teacher_name"`
		RoomName    *string `json:"room_name"`
		RoomNumber  *string `json:"room_number"`
	}
	err = ctrl.DB.Table("attendance a").
		Select(`a.attendance_date AS date, a.attendance_time AS time, a.attendance_status AS status,
			c.course_code AS code, c.course_name AS name, u.user_name AS teacher_name,
			COALESCE(sr.room_name, cr.room_name) AS room_name,
			COALESCE(sr.room_number, cr.room_number) AS room_number`).
		Joins("LEFT JOIN courses c ON c.course_id = a.attendance_course_id").
		Joins("LEFT JOIN rooms cr ON cr.room_id = c.course_room_id").
		Joins(`LEFT JOIN attendance_sessions s
			ON s.attendance_session_course_id = a.attendance_course_id
			AND s.attendance_session_date = a.attendance_date`).
		Joins("LEFT JOIN rooms sr ON sr.room_id = s.attendance_session_room_id").
		Joins("LEFT JOIN users u ON u.user_id = s.attendance_session_created_by").
		Where("a.attendance_user_id = ?", userID).
		Order("a.attendance_date DESC").
		Scan(&records).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch history")
	}
	return helper.JsonOK(c, "ok", records)
}

// GET /api/student/summary?start=&end= — rekap status milik sendiri.
func (ctrl *AttendanceController) MySummary(c *fiber.Ctx) error {
	start := strings.TrimSpace(c.Query("start"))
	end := strings.TrimSpace(c.Query("end"))
	if start == "" || end == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Start and end dates are required.")
	}

	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := ctrl.DB.Table("attendance").
		Select("attendance_status AS status, COUNT(*) AS count").
		Where("attendance_user_id = ? AND attendance_date BETWEEN ? AND ?", userID, start, end).
		Group("attendance_status").
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch summary")
	}

	summary := map[string]int64{"Present": 0, "Late": 0, "Absent": 0, "Excused": 0}
	for _, r := range rows {
		if _, ok := summary[r.Status]; ok {
			summary[r.Status] = r.Count
		}
	}
	return helper.JsonOK(c, "ok", summary)
}
