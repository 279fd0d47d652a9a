// internals/features/school/courses/controller/course_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/school/courses/dto"
	"presensiku_backend/internals/features/school/courses/model"
	"presensiku_backend/internals/features/school/courses/service"

	"presensiku_backend/internals/constants"
	helper "presensiku_backend/internals/helpers"
	"presensiku_backend/internals/helpers/dbtime"
)

type CourseController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{DB: db, Validate: validator.New()}
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

// GET /api/courses — termasuk nama room defaultnya.
func (ctrl *CourseController) List(c *fiber.Ctx) error {
	var courses []struct {
		CourseID   uuid.UUID      `json:"course_id"`
		Code       string         `json:"code"`
		Name       string         `json:"name"`
		RoomID     *uuid.UUID     `json:"room_id"`
		StartTime  *dbtime.Tod    `json:"start_time"`
		EndTime    *dbtime.Tod    `json:"end_time"`
		Days       pq.StringArray `gorm:"type:text[]" json:"days"`
		RoomName   *string        `json:"room_name"`
		RoomNumber *string        `json:"room_number"`
	}
	err := ctrl.DB.Table("courses c").
		Select(`c.course_id, c.course_code AS code, c.course_name AS name,
			c.course_room_id AS room_id, c.course_start_time AS start_time,
			c.course_end_time AS end_time, c.course_days AS days,
			r.room_name, r.room_number`).
		Joins("LEFT JOIN rooms r ON r.room_id = c.course_room_id").
		Order("c.course_code").
		Scan(&courses).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch courses")
	}
	return helper.JsonOK(c, "ok", courses)
}

// GET /api/public/courses — untuk form signup, field seperlunya saja.
func (ctrl *CourseController) PublicList(c *fiber.Ctx) error {
	var courses []struct {
		ID   uuid.UUID `json:"id"`
		Code string    `json:"code"`
		Name string    `json:"name"`
	}
	err := ctrl.DB.Model(&model.CourseModel{}).
		Select("course_id AS id, course_code AS code, course_name AS name").
		Order("course_code").
		Scan(&courses).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch courses")
	}
	return helper.JsonOK(c, "ok", courses)
}

// POST /api/courses
func (ctrl *CourseController) Create(c *fiber.Ctx) error {
	var req dto.CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	course, err := req.ToModel()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID or time format")
	}

	var dup int64
	if err := ctrl.DB.Model(&model.CourseModel{}).
		Where("course_code = ?", course.CourseCode).
		Count(&dup).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check course code")
	}
	if dup > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "A course with this code already exists.")
	}

	conflict, err := service.HasScheduleConflict(ctrl.DB, course, nil)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check schedule")
	}
	if conflict {
		return helper.JsonError(c, fiber.StatusConflict, "Schedule conflict: The selected room is already booked for this time.")
	}

	if err := ctrl.DB.Create(course).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "A course with this code already exists.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create course")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "CREATE_COURSE",
		map[string]interface{}{"code": course.CourseCode, "name": course.CourseName, "room_id": course.CourseRoomID})

	return helper.JsonCreated(c, "Course created", course)
}

// PUT /api/courses/:id
func (ctrl *CourseController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var req dto.CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	course, err := req.ToModel()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid room ID or time format")
	}

	var dup int64
	if err := ctrl.DB.Model(&model.CourseModel{}).
		Where("course_code = ? AND course_id != ?", course.CourseCode, id).
		Count(&dup).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check course code")
	}
	if dup > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "A course with this code already exists.")
	}

	conflict, err := service.HasScheduleConflict(ctrl.DB, course, &id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check schedule")
	}
	if conflict {
		return helper.JsonError(c, fiber.StatusConflict, "Schedule conflict: The selected room is already booked for this time.")
	}

	res := ctrl.DB.Model(&model.CourseModel{}).
		Where("course_id = ?", id).
		Updates(map[string]interface{}{
			"course_code":       course.CourseCode,
			"course_name":       course.CourseName,
			"course_room_id":    course.CourseRoomID,
			"course_start_time": course.CourseStartTime,
			"course_end_time":   course.CourseEndTime,
			"course_days":       course.CourseDays,
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update course")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Course not found.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "UPDATE_COURSE",
		map[string]interface{}{"id": id, "code": course.CourseCode, "name": course.CourseName})

	return helper.JsonUpdated(c, "Course updated", nil)
}

// DELETE /api/courses/:id — enrollment, absensi, dan sesi ikut dibersihkan.
func (ctrl *CourseController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.CourseModel{}, "course_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Exec("DELETE FROM student_courses WHERE student_course_course_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM attendance WHERE attendance_course_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM attendance_sessions WHERE attendance_session_course_id = ?", id).Error
	})
	if err == gorm.ErrRecordNotFound {
		return helper.JsonError(c, fiber.StatusNotFound, "Course not found.")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete course")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "DELETE_COURSE",
		map[string]interface{}{"id": id})

	return helper.JsonDeleted(c, "Course deleted", nil)
}

// GET /api/courses/:id/students?search= — semua siswa + flag is_enrolled,
// yang sudah terdaftar tampil duluan.
func (ctrl *CourseController) Students(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}
	search := strings.TrimSpace(c.Query("search"))
	term := "%" + search + "%"

	var students []struct {
		UserID      uuid.UUID `json:"user_id"`
		Name        string    `json:"name"`
		StudentCode string    `json:"student_code"`
		IsEnrolled  bool      `json:"is_enrolled"`
	}
	err = ctrl.DB.Table("users u").
		Select(`u.user_id, u.user_name AS name, sd.student_detail_student_code AS student_code,
			CASE WHEN sc.student_course_course_id IS NOT NULL THEN true ELSE false END AS is_enrolled`).
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Joins(`LEFT JOIN student_courses sc
			ON sc.student_course_user_id = u.user_id AND sc.student_course_course_id = ?`, id).
		Where("u.user_role = ? AND (u.user_name LIKE ? OR sd.student_detail_student_code LIKE ?)",
			constants.RoleStudent, term, term).
		Order("is_enrolled DESC, u.user_name").
		Scan(&students).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch students")
	}
	return helper.JsonOK(c, "ok", students)
}

// POST /api/courses/:id/enroll — idempotent (double enroll diabaikan).
func (ctrl *CourseController) Enroll(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid student ID")
	}

	enroll := model.StudentCourseModel{
		StudentCourseUserID:   studentID,
		StudentCourseCourseID: id,
	}
	if err := ctrl.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&enroll).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to enroll student")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "ENROLL_STUDENT",
		map[string]interface{}{"course_id": id, "student_id": studentID})

	return helper.JsonOK(c, "Student enrolled", nil)
}

// POST /api/courses/:id/unenroll
func (ctrl *CourseController) Unenroll(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid student ID")
	}

	if err := ctrl.DB.
		Where("student_course_user_id = ? AND student_course_course_id = ?", studentID, id).
		Delete(&model.StudentCourseModel{}).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to unenroll student")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "UNENROLL_STUDENT",
		map[string]interface{}{"course_id": id, "student_id": studentID})

	return helper.JsonOK(c, "Student unenrolled", nil)
}
