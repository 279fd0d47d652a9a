// internals/features/school/excuses/controller/excuse_controller.go
package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/school/excuses/dto"
	"presensiku_backend/internals/features/school/excuses/model"

	helper "presensiku_backend/internals/helpers"
	"presensiku_backend/internals/helpers/dbtime"
)

type ExcuseController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewExcuseController(db *gorm.DB) *ExcuseController {
	return &ExcuseController{DB: db, Validate: validator.New()}
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

// POST /api/student/excuse — satu izin per (user, date). Kalau sudah ada
// dan masih Pending, alasannya di-update; izin yang sudah diproses tidak
// boleh diubah. Read-modify-write dalam satu transaksi.
func (ctrl *ExcuseController) Submit(c *fiber.Ctx) error {
	var req dto.SubmitExcuseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !dbtime.ValidDate(req.Date) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid date format")
	}
	if dbtime.BeforeToday(req.Date) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Cannot submit an excuse for a past date.")
	}

	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	var processed bool
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.ExcuseModel
		findErr := tx.Where("excuse_user_id = ? AND excuse_date = ?", userID, req.Date).
			First(&existing).Error
		if findErr == gorm.ErrRecordNotFound {
			return tx.Create(&model.ExcuseModel{
				ExcuseUserID: userID,
				ExcuseDate:   req.Date,
				ExcuseReason: req.Reason,
				ExcuseStatus: model.ExcusePending,
			}).Error
		}
		if findErr != nil {
			return findErr
		}
		if existing.ExcuseStatus != model.ExcusePending {
			processed = true
			return nil
		}
		return tx.Model(&model.ExcuseModel{}).
			Where("excuse_id = ?", existing.ExcuseID).
			Update("excuse_reason", req.Reason).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to submit excuse")
	}
	if processed {
		return helper.JsonError(c, fiber.StatusForbidden, "Cannot update an excuse that has already been processed.")
	}

	return helper.JsonCreated(c, "Excuse submitted or updated successfully.", nil)
}

// GET /api/student/excuses — semua izin milik siswa yang login.
func (ctrl *ExcuseController) MyExcuses(c *fiber.Ctx) error {
	userIDStr, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	var excuses []model.ExcuseModel
	if err := ctrl.DB.Where("excuse_user_id = ?", userID).
		Order("excuse_date DESC").
		Find(&excuses).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch excuses")
	}
	return helper.JsonOK(c, "ok", excuses)
}

// GET /api/excuses — antrian Pending untuk staff.
func (ctrl *ExcuseController) Pending(c *fiber.Ctx) error {
	var rows []struct {
		ID          uuid.UUID `json:"id"`
		Date        string    `json:"date"`
		Reason      string    `json:"reason"`
		Status      string    `json:"status"`
		StudentCode string    `json:"student_code"`
		Name        string    `json:"name"`
	}
	err := ctrl.DB.Table("excuses e").
		Select(`e.excuse_id AS id, e.excuse_date AS date, e.excuse_reason AS reason,
			e.excuse_status AS status, sd.student_detail_student_code AS student_code,
			u.user_name AS name`).
		Joins("JOIN users u ON u.user_id = e.excuse_user_id").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Where("e.excuse_status = ?", model.ExcusePending).
		Scan(&rows).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch excuses")
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /api/excuses/history — 50 keputusan terakhir.
func (ctrl *ExcuseController) History(c *fiber.Ctx) error {
	var rows []struct {
		ID            uuid.UUID `json:"id"`
		Date          string    `json:"date"`
		Reason        string    `json:"reason"`
		Status        string    `json:"status"`
		StudentCode   string    `json:"student_code"`
		StudentName   string    `json:"student_name"`
		ProcessorName *string   `json:"processor_name"`
	}
	err := ctrl.DB.Table("excuses e").
		Select(`e.excuse_id AS id, e.excuse_date AS date, e.excuse_reason AS reason,
			e.excuse_status AS status, sd.student_detail_student_code AS student_code,
			u.user_name AS student_name, p.user_name AS processor_name`).
		Joins("JOIN users u ON u.user_id = e.excuse_user_id").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = u.user_id").
		Joins("LEFT JOIN users p ON p.user_id = e.excuse_processed_by").
		Where("e.excuse_status != ?", model.ExcusePending).
		Order("e.excuse_date DESC").
		Limit(50).
		Scan(&rows).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch history")
	}
	return helper.JsonOK(c, "ok", rows)
}

// PUT /api/excuses/:id/approve — set Approved lalu cascade ke absensi:
// SEMUA record siswa di tanggal izin jadi Excused, time "--" (izin berlaku
// harian, bukan per course).
func (ctrl *ExcuseController) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid excuse ID")
	}

	var excuse model.ExcuseModel
	if err := ctrl.DB.Where("excuse_id = ?", id).First(&excuse).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Excuse not found.")
	}

	actor := actorFromLocals(c)
	now := time.Now()
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"excuse_status":       model.ExcuseApproved,
			"excuse_processed_at": now,
		}
		if actor.ID != uuid.Nil {
			updates["excuse_processed_by"] = actor.ID
		}
		if err := tx.Model(&model.ExcuseModel{}).
			Where("excuse_id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.Exec(`UPDATE attendance SET attendance_status = 'Excused', attendance_time = '--'
			WHERE attendance_user_id = ? AND attendance_date = ?`,
			excuse.ExcuseUserID, excuse.ExcuseDate).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to approve excuse")
	}

	auditService.LogAction(ctrl.DB, actor, "APPROVE_EXCUSE",
		map[string]interface{}{"excuse_id": id, "student_user_id": excuse.ExcuseUserID})

	return helper.JsonOK(c, "Excuse approved and attendance updated.", nil)
}

// PUT /api/excuses/:id/deny — tidak menyentuh absensi.
func (ctrl *ExcuseController) Deny(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid excuse ID")
	}

	actor := actorFromLocals(c)
	updates := map[string]interface{}{
		"excuse_status":       model.ExcuseDenied,
		"excuse_processed_at": time.Now(),
	}
	if actor.ID != uuid.Nil {
		updates["excuse_processed_by"] = actor.ID
	}

	res := ctrl.DB.Model(&model.ExcuseModel{}).
		Where("excuse_id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to deny excuse")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Excuse not found.")
	}

	auditService.LogAction(ctrl.DB, actor, "DENY_EXCUSE",
		map[string]interface{}{"excuse_id": id})

	return helper.JsonOK(c, "Excuse denied.", nil)
}

// PUT /api/excuses/:id — koreksi staff, hanya untuk izin Pending.
func (ctrl *ExcuseController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid excuse ID")
	}

	var req dto.UpdateExcuseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res := ctrl.DB.Model(&model.ExcuseModel{}).
		Where("excuse_id = ? AND excuse_status = ?", id, model.ExcusePending).
		Updates(map[string]interface{}{
			"excuse_reason": req.Reason,
			"excuse_date":   req.Date,
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update excuse")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Excuse not found or it has already been processed.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "UPDATE_EXCUSE",
		map[string]interface{}{"excuse_id": id, "new_date": req.Date})

	return helper.JsonUpdated(c, "Excuse updated successfully.", nil)
}

// DELETE /api/excuses/:id
func (ctrl *ExcuseController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid excuse ID")
	}

	res := ctrl.DB.Delete(&model.ExcuseModel{}, "excuse_id = ?", id)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete excuse")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Excuse not found.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "DELETE_EXCUSE",
		map[string]interface{}{"excuse_id": id})

	return helper.JsonDeleted(c, "Excuse deleted successfully.", nil)
}
