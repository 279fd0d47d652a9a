// internals/features/users/users/controller/staff_controller.go
package controller

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/users/users/dto"
	"presensiku_backend/internals/features/users/users/model"

	"presensiku_backend/internals/constants"
	helper "presensiku_backend/internals/helpers"
)

type StaffController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db, Validate: validator.New()}
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

// GET /api/staff — registrar & teacher saja (admin tidak ditampilkan
// supaya tidak bisa menghapus diri sendiri dari UI).
func (ctrl *StaffController) List(c *fiber.Ctx) error {
	var staff []struct {
		ID       uuid.UUID `json:"id"`
		Username *string   `json:"username"`
		Name     string    `json:"name"`
		Role     string    `json:"role"`
	}
	err := ctrl.DB.Model(&model.UserModel{}).
		Select("user_id AS id, user_username AS username, user_name AS name, user_role AS role").
		Where("user_role IN ?", []string{constants.RoleRegistrar, constants.RoleTeacher}).
		Order("user_name").
		Scan(&staff).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch staff")
	}
	return helper.JsonOK(c, "ok", staff)
}

// POST /api/staff
func (ctrl *StaffController) Create(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var taken int64
	if err := ctrl.DB.Model(&model.UserModel{}).
		Where("user_username = ?", req.Username).
		Count(&taken).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check username")
	}
	if taken > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Username is already taken.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	hashedStr := string(hashed)
	user := model.UserModel{
		UserUsername: &req.Username,
		UserPassword: &hashedStr,
		UserRole:     req.Role,
		UserName:     req.Name,
	}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username is already taken.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create staff user")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "CREATE_STAFF",
		map[string]interface{}{"new_user_id": user.UserID, "new_username": req.Username, "role": req.Role})

	return helper.JsonCreated(c, "Staff user created.", fiber.Map{"id": user.UserID})
}

// DELETE /api/staff/:id — hanya role teacher/registrar yang bisa dihapus.
func (ctrl *StaffController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid staff ID")
	}

	res := ctrl.DB.Where("user_id = ? AND user_role IN ?", id,
		[]string{constants.RoleTeacher, constants.RoleRegistrar}).
		Delete(&model.UserModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete staff user")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Staff user not found or you are not allowed to delete this user.")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "DELETE_STAFF",
		map[string]interface{}{"deleted_user_id": id})

	return helper.JsonDeleted(c, "Staff user deleted successfully.", nil)
}

// POST /api/staff/:id/reset-password — admin generate link reset untuk
// staff yang lupa password (link ditulis ke log, belum ada email).
func (ctrl *StaffController) ResetPassword(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid staff ID")
	}

	var user model.UserModel
	if err := ctrl.DB.Where("user_id = ?", id).First(&user).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found.")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().Add(time.Hour)

	if err := ctrl.DB.Model(&model.UserModel{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"user_reset_token":        token,
			"user_reset_token_expiry": expiry,
		}).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to store reset token")
	}

	resetLink := fmt.Sprintf("/reset-password.html?token=%s", token)
	log.Printf("[RESET] Link reset (admin) untuk user %s: %s", user.UserName, resetLink)

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "ADMIN_RESET_PASSWORD",
		map[string]interface{}{"target_user_id": user.UserID, "target_username": user.UserUsername})

	username := ""
	if user.UserUsername != nil {
		username = *user.UserUsername
	}
	return helper.JsonOK(c,
		fmt.Sprintf("Password reset link for %s has been generated.", username),
		fiber.Map{"resetLink": resetLink})
}
