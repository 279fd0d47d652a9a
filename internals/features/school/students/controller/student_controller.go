// internals/features/school/students/controller/student_controller.go
package controller

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	excuseModel "presensiku_backend/internals/features/school/excuses/model"
	"presensiku_backend/internals/features/school/students/dto"
	"presensiku_backend/internals/features/school/students/model"
	"presensiku_backend/internals/features/school/students/service"
	userModel "presensiku_backend/internals/features/users/users/model"

	"presensiku_backend/internals/constants"
	helper "presensiku_backend/internals/helpers"
	"presensiku_backend/internals/helpers/dbtime"
)

type StudentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db, Validate: validator.New()}
}

func (ctrl *StudentController) actor(c *fiber.Ctx) auditService.Actor {
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

// GET /api/students?page=&limit=&search=&course_id=&year_level=
func (ctrl *StudentController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, helper.DefaultOpts)
	search := strings.TrimSpace(c.Query("search"))
	courseID := strings.TrimSpace(c.Query("course_id"))
	yearLevel := strings.TrimSpace(c.Query("year_level"))

	base := ctrl.DB.Table("users u").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("u.user_role = ?", constants.RoleStudent)

	if search != "" {
		base = base.Where("u.user_name LIKE ?", "%"+search+"%")
	}
	if yearLevel != "" {
		base = base.Where("sd.student_detail_year_level = ?", yearLevel)
	}
	if courseID != "" {
		cid, err := uuid.Parse(courseID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course ID")
		}
		base = base.Where(`EXISTS (SELECT 1 FROM student_courses sc
			WHERE sc.student_course_user_id = u.user_id AND sc.student_course_course_id = ?)`, cid)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count students")
	}

	var students []dto.StudentRow
	err := base.Session(&gorm.Session{}).
		Select(`u.user_username AS username, u.user_name AS name,
			sd.student_detail_student_code AS student_code,
			sd.student_detail_age AS age, sd.student_detail_gender AS gender,
			sd.student_detail_year_level AS year_level`).
		Order("sd.student_detail_student_code").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&students).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch students")
	}

	return helper.JsonList(c, "ok", students, helper.BuildMeta(total, p))
}

// GET /api/students-list — versi ringan untuk dropdown.
func (ctrl *StudentController) SimpleList(c *fiber.Ctx) error {
	var students []struct {
		Name        string `json:"name"`
		StudentCode string `json:"student_code"`
	}
	err := ctrl.DB.Table("users u").
		Select("u.user_name AS name, sd.student_detail_student_code AS student_code").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("u.user_role = ?", constants.RoleStudent).
		Order("u.user_name").
		Scan(&students).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch students")
	}
	return helper.JsonOK(c, "ok", students)
}

// createStudent: users + student_details dalam satu transaksi. Kode manual
// dicek bentrok dulu; kosong berarti minta allocator.
func (ctrl *StudentController) createStudent(tx *gorm.DB, name string, age int, gender string, yearLevel *string, manualCode string) (string, error) {
	code := manualCode
	if code != "" {
		var count int64
		if err := tx.Model(&model.StudentDetailModel{}).
			Where("student_detail_student_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			return "", fmt.Errorf("Student Code %s is already in use.", code)
		}
	} else {
		var err error
		code, err = service.AllocateStudentCode(tx, time.Now().Year())
		if err != nil {
			return "", err
		}
	}

	user := userModel.UserModel{
		UserRole: constants.RoleStudent,
		UserName: name,
	}
	if err := tx.Create(&user).Error; err != nil {
		return "", err
	}

	detail := model.StudentDetailModel{
		StudentDetailUserID:      user.UserID,
		StudentDetailStudentCode: code,
		StudentDetailAge:         age,
		StudentDetailGender:      gender,
		StudentDetailYearLevel:   yearLevel,
	}
	if err := tx.Create(&detail).Error; err != nil {
		return "", err
	}
	return code, nil
}

// POST /api/students
func (ctrl *StudentController) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var code string
	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		code, err = ctrl.createStudent(tx, req.Name, req.Age, req.Gender, req.YearLevel, req.StudentCode)
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "already in use") {
			return helper.JsonError(c, fiber.StatusConflict, "This Student Code is already in use.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create student")
	}

	auditService.LogAction(ctrl.DB, ctrl.actor(c), "CREATE_STUDENT",
		map[string]interface{}{"student_code": code, "name": req.Name})

	return helper.JsonCreated(c, "Student created", fiber.Map{
		"name":         req.Name,
		"age":          req.Age,
		"gender":       req.Gender,
		"year_level":   req.YearLevel,
		"student_code": code,
	})
}

// PUT /api/students/:code — ganti kode diperbolehkan asal belum dipakai.
func (ctrl *StudentController) Update(c *fiber.Ctx) error {
	code := c.Params("code")

	var req dto.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var detail model.StudentDetailModel
		if err := tx.Where("student_detail_student_code = ?", code).First(&detail).Error; err != nil {
			return err
		}

		if err := tx.Model(&userModel.UserModel{}).
			Where("user_id = ?", detail.StudentDetailUserID).
			Update("user_name", req.Name).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"student_detail_age":        req.Age,
			"student_detail_gender":     req.Gender,
			"student_detail_year_level": req.YearLevel,
		}
		if req.StudentCode != "" && req.StudentCode != code {
			var count int64
			if err := tx.Model(&model.StudentDetailModel{}).
				Where("student_detail_student_code = ?", req.StudentCode).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return gorm.ErrDuplicatedKey
			}
			updates["student_detail_student_code"] = req.StudentCode
		}

		return tx.Model(&model.StudentDetailModel{}).
			Where("student_detail_user_id = ?", detail.StudentDetailUserID).
			Updates(updates).Error
	})
	if err == gorm.ErrRecordNotFound {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found.")
	}
	if err == gorm.ErrDuplicatedKey || helper.IsUniqueViolation(err) {
		return helper.JsonError(c, fiber.StatusConflict, "The new Student Code is already in use.")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update student")
	}

	auditService.LogAction(ctrl.DB, ctrl.actor(c), "UPDATE_STUDENT",
		map[string]interface{}{"student_code": code, "name": req.Name})

	return helper.JsonUpdated(c, "Student updated successfully.", nil)
}

// DELETE /api/students/:code — hapus user berikut data turunannya.
func (ctrl *StudentController) Delete(c *fiber.Ctx) error {
	code := c.Params("code")

	var detail model.StudentDetailModel
	if err := ctrl.DB.Where("student_detail_student_code = ?", code).First(&detail).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found.")
	}

	uid := detail.StudentDetailUserID
	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM attendance WHERE attendance_user_id = ?", uid).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM excuses WHERE excuse_user_id = ?", uid).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM student_courses WHERE student_course_user_id = ?", uid).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM student_details WHERE student_detail_user_id = ?", uid).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM users WHERE user_id = ?", uid).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete student")
	}

	auditService.LogAction(ctrl.DB, ctrl.actor(c), "DELETE_STUDENT",
		map[string]interface{}{"student_code": code})

	return helper.JsonDeleted(c, "Student deleted successfully.", nil)
}

// POST /api/students/upload-csv — multipart field "studentCsv".
// Header: name,age,gender[,student_code]. Tiap baris transaksi sendiri:
// baris rusak dilewati tanpa membatalkan sisanya.
func (ctrl *StudentController) UploadCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("studentCsv")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "No CSV file uploaded.")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Failed to read CSV file.")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Malformed CSV file.")
	}
	if len(records) < 1 {
		return helper.JsonError(c, fiber.StatusBadRequest, "CSV file is empty.")
	}

	// Header fleksibel: cari posisi kolom dari baris pertama.
	colIdx := map[string]int{}
	for i, h := range records[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	actor := ctrl.actor(c)
	successful := 0
	errs := []dto.CSVRowError{}
	totalRows := len(records) - 1

	for _, row := range records[1:] {
		name := get(row, "name")
		ageStr := get(row, "age")
		gender := get(row, "gender")
		manualCode := get(row, "student_code")

		age, convErr := strconv.Atoi(ageStr)
		if name == "" || gender == "" || convErr != nil || age <= 0 {
			label := name
			if label == "" {
				label = "Unknown Row"
			}
			errs = append(errs, dto.CSVRowError{Student: label, Error: "Missing required fields (name, age, gender)."})
			continue
		}

		var code string
		txErr := ctrl.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			code, err = ctrl.createStudent(tx, name, age, gender, nil, manualCode)
			return err
		})
		if txErr != nil {
			errs = append(errs, dto.CSVRowError{Student: name, Error: txErr.Error()})
			continue
		}

		successful++
		auditService.LogAction(ctrl.DB, actor, "BULK_CREATE_STUDENT",
			map[string]interface{}{"student_code": code, "name": name})
	}

	return helper.JsonOK(c,
		fmt.Sprintf("Bulk upload complete. Successfully added %d of %d students.", successful, totalRows),
		fiber.Map{"errors": errs, "totalRows": totalRows})
}

// GET /api/student-history?student_code=&startDate=&endDate=
func (ctrl *StudentController) History(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("student_code"))
	start := strings.TrimSpace(c.Query("startDate"))
	end := strings.TrimSpace(c.Query("endDate"))
	if code == "" || start == "" || end == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Student, start date, and end date are required.")
	}

	var records []struct {
		Date   string `json:"date"`
		Time   string `json:"time"`
		Status string `json:"status"`
	}
	err := ctrl.DB.Table("attendance a").
		Select("a.attendance_date AS date, a.attendance_time AS time, a.attendance_status AS status").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = a.attendance_user_id").
		Where("sd.student_detail_student_code = ? AND a.attendance_date BETWEEN ? AND ?", code, start, end).
		Order("a.attendance_date DESC").
		Scan(&records).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch history")
	}
	return helper.JsonOK(c, "ok", records)
}

// GET /api/student-profile/:student_code — detail + absensi 30 hari + izin.
func (ctrl *StudentController) Profile(c *fiber.Ctx) error {
	code := c.Params("student_code")

	var details struct {
		UserID      uuid.UUID `json:"-"`
		Name        string    `json:"name"`
		StudentCode string    `json:"student_code"`
		Age         int       `json:"age"`
		Gender      string    `json:"gender"`
	}
	err := ctrl.DB.Table("users u").
		Select(`u.user_id, u.user_name AS name, sd.student_detail_student_code AS student_code,
			sd.student_detail_age AS age, sd.student_detail_gender AS gender`).
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("sd.student_detail_student_code = ?", code).
		Take(&details).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found.")
	}

	start := dbtime.DateStr(time.Now().AddDate(0, 0, -30))
	today := dbtime.Today()

	var attendance []struct {
		Date   string `json:"date"`
		Time   string `json:"time"`
		Status string `json:"status"`
	}
	if err := ctrl.DB.Table("attendance").
		Select("attendance_date AS date, attendance_time AS time, attendance_status AS status").
		Where("attendance_user_id = ? AND attendance_date BETWEEN ? AND ?", details.UserID, start, today).
		Order("attendance_date DESC").
		Scan(&attendance).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch attendance")
	}

	var excuses []struct {
		Date   string `json:"date"`
		Reason string `json:"reason"`
		Status string `json:"status"`
	}
	if err := ctrl.DB.Model(&excuseModel.ExcuseModel{}).
		Select("excuse_date AS date, excuse_reason AS reason, excuse_status AS status").
		Where("excuse_user_id = ?", details.UserID).
		Order("excuse_date DESC").
		Scan(&excuses).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch excuses")
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"details":    details,
		"attendance": attendance,
		"excuses":    excuses,
	})
}

// GET /api/summary/:student_code?start=&end= — rekap status per rentang.
func (ctrl *StudentController) Summary(c *fiber.Ctx) error {
	code := c.Params("student_code")
	start := strings.TrimSpace(c.Query("start"))
	end := strings.TrimSpace(c.Query("end"))
	if start == "" || end == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Start and end dates are required.")
	}

	var student struct {
		UserID      uuid.UUID
		Name        string
		StudentCode string
	}
	err := ctrl.DB.Table("users u").
		Select("u.user_id, u.user_name AS name, sd.student_detail_student_code AS student_code").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("sd.student_detail_student_code = ? AND u.user_role = ?", code, constants.RoleStudent).
		Take(&student).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found.")
	}

	summary, err := statusSummary(ctrl.DB, student.UserID, start, end)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch summary")
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"name":         student.Name,
		"student_code": student.StudentCode,
		"summary":      summary,
	})
}

// GET /api/public/student/:code — validasi kode publik (tanpa login).
func (ctrl *StudentController) PublicValidate(c *fiber.Ctx) error {
	code := c.Params("code")

	var student struct {
		Name        string `json:"name"`
		StudentCode string `json:"student_code"`
	}
	err := ctrl.DB.Table("users u").
		Select("u.user_name AS name, sd.student_detail_student_code AS student_code").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("sd.student_detail_student_code = ? AND u.user_role = ?", code, constants.RoleStudent).
		Take(&student).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Student code not found.")
	}
	return helper.JsonOK(c, "ok", student)
}

// statusSummary: hitung per status dalam rentang tanggal (inklusif).
func statusSummary(db *gorm.DB, userID uuid.UUID, start, end string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Table("attendance").
		Select("attendance_status AS status, COUNT(*) AS count").
		Where("attendance_user_id = ? AND attendance_date BETWEEN ? AND ?", userID, start, end).
		Group("attendance_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := map[string]int64{"Present": 0, "Late": 0, "Absent": 0, "Excused": 0}
	for _, r := range rows {
		if _, ok := summary[r.Status]; ok {
			summary[r.Status] = r.Count
		}
	}
	return summary, nil
}
