// internals/features/users/users/controller/registration_controller.go
package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	courseModel "presensiku_backend/internals/features/school/courses/model"
	studentModel "presensiku_backend/internals/features/school/students/model"
	studentService "presensiku_backend/internals/features/school/students/service"
	"presensiku_backend/internals/features/users/users/dto"
	"presensiku_backend/internals/features/users/users/model"

	"presensiku_backend/internals/constants"
	helper "presensiku_backend/internals/helpers"
)

type RegistrationController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewRegistrationController(db *gorm.DB) *RegistrationController {
	return &RegistrationController{DB: db, Validate: validator.New()}
}

// usernameTaken cek users + kedua antrian registrasi sekaligus.
func (ctrl *RegistrationController) usernameTaken(username string) (bool, error) {
	var count int64
	if err := ctrl.DB.Model(&model.UserModel{}).
		Where("user_username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := ctrl.DB.Model(&model.StudentRegistrationModel{}).
		Where("student_registration_username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := ctrl.DB.Model(&model.StaffRegistrationModel{}).
		Where("staff_registration_username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// POST /api/student-signup — publik, masuk antrian approval.
func (ctrl *RegistrationController) StudentSignup(c *fiber.Ctx) error {
	var req dto.StudentSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	taken, err := ctrl.usernameTaken(req.Username)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check username")
	}
	if taken {
		return helper.JsonError(c, fiber.StatusConflict, "Username is already taken.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	reg := model.StudentRegistrationModel{
		StudentRegistrationName:      req.Name,
		StudentRegistrationUsername:  req.Username,
		StudentRegistrationPassword:  string(hashed),
		StudentRegistrationAge:       req.Age,
		StudentRegistrationGender:    req.Gender,
		StudentRegistrationCourseID:  &courseID,
		StudentRegistrationYearLevel: &req.YearLevel,
	}
	if err := ctrl.DB.Create(&reg).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username is already taken.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to submit registration")
	}

	return helper.JsonCreated(c, "Registration submitted successfully. Please wait for admin approval.", nil)
}

// GET /api/student-registrations
func (ctrl *RegistrationController) StudentRegistrations(c *fiber.Ctx) error {
	var rows []struct {
		ID         uuid.UUID  `json:"id"`
		Name       string     `json:"name"`
		Username   string     `json:"username"`
		Age        int        `json:"age"`
		Gender     string     `json:"gender"`
		CourseID   *uuid.UUID `json:"course_id"`
		YearLevel  *string    `json:"year_level"`
		Timestamp  time.Time  `json:"timestamp"`
		CourseCode *string    `json:"course_code"`
		CourseName *string    `json:"course_name"`
	}
	err := ctrl.DB.Table("student_registrations sr").
		Select(`sr.student_registration_id AS id, sr.student_registration_name AS name,
			sr.student_registration_username AS username, sr.student_registration_age AS age,
			sr.student_registration_gender AS gender, sr.student_registration_course_id AS course_id,
			sr.student_registration_year_level AS year_level, sr.student_registration_timestamp AS timestamp,
			c.course_code, c.course_name`).
		Joins("LEFT JOIN courses c ON c.course_id = sr.student_registration_course_id").
		Order("sr.student_registration_timestamp ASC").
		Scan(&rows).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch registrations")
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /api/student-registrations/:id/approve — buat user + detail +
// kode siswa + enroll course, lalu hapus antrian. Satu transaksi.
func (ctrl *RegistrationController) ApproveStudent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid registration ID")
	}

	var reg model.StudentRegistrationModel
	if err := ctrl.DB.Where("student_registration_id = ?", id).First(&reg).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Registration not found.")
	}

	var taken int64
	if err := ctrl.DB.Model(&model.UserModel{}).
		Where("user_username = ?", reg.StudentRegistrationUsername).
		Count(&taken).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check username")
	}
	if taken > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Username "+reg.StudentRegistrationUsername+" is already taken.")
	}

	var studentCode string
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		password := reg.StudentRegistrationPassword
		user := model.UserModel{
			UserUsername: &reg.StudentRegistrationUsername,
			UserPassword: &password,
			UserRole:     constants.RoleStudent,
			UserName:     reg.StudentRegistrationName,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var err error
		studentCode, err = studentService.AllocateStudentCode(tx, time.Now().Year())
		if err != nil {
			return err
		}

		detail := studentModel.StudentDetailModel{
			StudentDetailUserID:      user.UserID,
			StudentDetailStudentCode: studentCode,
			StudentDetailAge:         reg.StudentRegistrationAge,
			StudentDetailGender:      reg.StudentRegistrationGender,
			StudentDetailYearLevel:   reg.StudentRegistrationYearLevel,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return err
		}

		if reg.StudentRegistrationCourseID != nil {
			var courseCount int64
			if err := tx.Model(&courseModel.CourseModel{}).
				Where("course_id = ?", *reg.StudentRegistrationCourseID).
				Count(&courseCount).Error; err != nil {
				return err
			}
			if courseCount > 0 {
				enroll := courseModel.StudentCourseModel{
					StudentCourseUserID:   user.UserID,
					StudentCourseCourseID: *reg.StudentRegistrationCourseID,
				}
				if err := tx.Create(&enroll).Error; err != nil {
					return err
				}
			}
		}

		return tx.Delete(&model.StudentRegistrationModel{}, "student_registration_id = ?", id).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to approve registration")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "APPROVE_REGISTRATION",
		map[string]interface{}{"registration_id": id, "new_student_code": studentCode})

	return helper.JsonOK(c, "Student registration approved.", nil)
}

// POST /api/student-registrations/:id/reject
func (ctrl *RegistrationController) RejectStudent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid registration ID")
	}

	if err := ctrl.DB.Delete(&model.StudentRegistrationModel{}, "student_registration_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to reject registration")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "REJECT_REGISTRATION",
		map[string]interface{}{"registration_id": id})

	return helper.JsonOK(c, "Registration rejected.", nil)
}

// POST /api/staff-signup — publik; role selalu teacher, admin tidak bisa
// didaftarkan dari luar.
func (ctrl *RegistrationController) StaffSignup(c *fiber.Ctx) error {
	var req dto.StaffSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	taken, err := ctrl.usernameTaken(req.Username)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check username")
	}
	if taken {
		return helper.JsonError(c, fiber.StatusConflict, "Username is already taken.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	reg := model.StaffRegistrationModel{
		StaffRegistrationName:     req.Name,
		StaffRegistrationUsername: req.Username,
		StaffRegistrationPassword: string(hashed),
		StaffRegistrationRole:     constants.RoleTeacher,
	}
	if err := ctrl.DB.Create(&reg).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username is already taken.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to submit registration")
	}

	return helper.JsonCreated(c, "Registration submitted successfully. Please wait for admin approval.", nil)
}

// GET /api/staff-registrations
func (ctrl *RegistrationController) StaffRegistrations(c *fiber.Ctx) error {
	var rows []struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		Timestamp time.Time `json:"timestamp"`
	}
	err := ctrl.DB.Model(&model.StaffRegistrationModel{}).
		Select(`staff_registration_id AS id, staff_registration_name AS name,
			staff_registration_username AS username, staff_registration_role AS role,
			staff_registration_timestamp AS timestamp`).
		Order("staff_registration_timestamp ASC").
		Scan(&rows).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch registrations")
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /api/staff-registrations/:id/approve
func (ctrl *RegistrationController) ApproveStaff(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid registration ID")
	}

	var reg model.StaffRegistrationModel
	if err := ctrl.DB.Where("staff_registration_id = ?", id).First(&reg).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Registration not found.")
	}

	var taken int64
	if err := ctrl.DB.Model(&model.UserModel{}).
		Where("user_username = ?", reg.StaffRegistrationUsername).
		Count(&taken).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check username")
	}
	if taken > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Username "+reg.StaffRegistrationUsername+" is already taken.")
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		password := reg.StaffRegistrationPassword
		user := model.UserModel{
			UserUsername: &reg.StaffRegistrationUsername,
			UserPassword: &password,
			UserRole:     reg.StaffRegistrationRole,
			UserName:     reg.StaffRegistrationName,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Delete(&model.StaffRegistrationModel{}, "staff_registration_id = ?", id).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to approve registration")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "APPROVE_STAFF_REGISTRATION",
		map[string]interface{}{"registration_id": id, "username": reg.StaffRegistrationUsername})

	return helper.JsonOK(c, "Staff registration approved.", nil)
}

// POST /api/staff-registrations/:id/reject
func (ctrl *RegistrationController) RejectStaff(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid registration ID")
	}

	if err := ctrl.DB.Delete(&model.StaffRegistrationModel{}, "staff_registration_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to reject registration")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "REJECT_STAFF_REGISTRATION",
		map[string]interface{}{"registration_id": id})

	return helper.JsonOK(c, "Registration rejected.", nil)
}
