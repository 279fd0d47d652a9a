// internals/features/users/auth/controller/auth_controller.go
package controller

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	studentModel "presensiku_backend/internals/features/school/students/model"
	"presensiku_backend/internals/features/users/auth/dto"
	userModel "presensiku_backend/internals/features/users/users/model"

	"presensiku_backend/internals/bootstrap"
	"presensiku_backend/internals/configs"
	"presensiku_backend/internals/constants"
	helper "presensiku_backend/internals/helpers"
)

const (
	tokenTTL        = 24 * time.Hour
	resetTokenTTL   = time.Hour
	accessTokenName = "access_token"
)

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	State    *bootstrap.State
}

func NewAuthController(db *gorm.DB, state *bootstrap.State) *AuthController {
	return &AuthController{
		DB:       db,
		Validate: validator.New(),
		State:    state,
	}
}

func (ctrl *AuthController) actor(c *fiber.Ctx) auditService.Actor {
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

func issueToken(user *userModel.UserModel, studentCode string) (string, error) {
	claims := jwt.MapClaims{
		"sub":       user.UserID.String(),
		"user_name": user.UserName,
		"role":      user.UserRole,
		"exp":       time.Now().Add(tokenTTL).Unix(),
		"iat":       time.Now().Unix(),
	}
	if user.UserUsername != nil {
		claims["username"] = *user.UserUsername
	}
	if studentCode != "" {
		claims["student_code"] = studentCode
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}

func setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenName,
		Value:    token,
		Expires:  time.Now().Add(tokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

// POST /api/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var user userModel.UserModel
	err := ctrl.DB.Where("user_username = ?", req.Username).First(&user).Error
	if err != nil {
		auditService.LogAction(ctrl.DB, auditService.Actor{Name: req.Username}, "LOGIN_FAIL",
			map[string]interface{}{"reason": "User not found"})
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid credentials.")
	}

	if user.UserPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.UserPassword), []byte(req.Password)) != nil {
		auditService.LogAction(ctrl.DB,
			auditService.Actor{ID: user.UserID, Name: user.UserName, Role: user.UserRole},
			"LOGIN_FAIL", map[string]interface{}{"reason": "Invalid password"})
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid credentials.")
	}

	studentCode := ""
	if user.UserRole == constants.RoleStudent {
		var detail studentModel.StudentDetailModel
		if err := ctrl.DB.Where("student_detail_user_id = ?", user.UserID).First(&detail).Error; err == nil {
			studentCode = detail.StudentDetailStudentCode
		}
	}

	token, err := issueToken(&user, studentCode)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue token")
	}
	setAuthCookie(c, token)

	auditService.LogAction(ctrl.DB,
		auditService.Actor{ID: user.UserID, Name: user.UserName, Role: user.UserRole},
		"LOGIN_SUCCESS", nil)

	return helper.JsonOK(c, "Login success", fiber.Map{
		"token": token,
		"user": dto.SessionUser{
			ID:          user.UserID.String(),
			Username:    user.UserUsername,
			Name:        user.UserName,
			Role:        user.UserRole,
			StudentCode: studentCode,
		},
	})
}

// POST /api/logout
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	actor := ctrl.actor(c)
	if actor.ID != uuid.Nil {
		auditService.LogAction(ctrl.DB, actor, "LOGOUT", nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/session — endpoint publik; token dibaca best-effort supaya
// frontend bisa cek status login & setup mode dalam satu request.
func (ctrl *AuthController) Session(c *fiber.Ctx) error {
	if ctrl.State.NeedsSetup() {
		return c.JSON(fiber.Map{"authenticated": false, "needsSetup": true})
	}

	user, ok := ctrl.softIdentity(c)
	if !ok {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{"authenticated": true, "user": user})
}

func (ctrl *AuthController) softIdentity(c *fiber.Ctx) (dto.SessionUser, bool) {
	tokenString := ""
	if h := c.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		tokenString = h[7:]
	} else if v := c.Cookies(accessTokenName); v != "" {
		tokenString = v
	}
	if tokenString == "" {
		return dto.SessionUser{}, false
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(configs.JWTSecret), nil
	}); err != nil {
		return dto.SessionUser{}, false
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return dto.SessionUser{}, false
	}
	out := dto.SessionUser{ID: sub}
	if v, ok := claims["username"].(string); ok {
		out.Username = &v
	}
	if v, ok := claims["user_name"].(string); ok {
		out.Name = v
	}
	if v, ok := claims["role"].(string); ok {
		out.Role = v
	}
	if v, ok := claims["student_code"].(string); ok {
		out.StudentCode = v
	}
	return out, true
}

// POST /api/setup — hanya hidup selama belum ada admin.
func (ctrl *AuthController) Setup(c *fiber.Ctx) error {
	if !ctrl.State.NeedsSetup() {
		return helper.JsonError(c, fiber.StatusForbidden, "Setup has already been completed.")
	}

	var req dto.SetupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	hashedStr := string(hashed)
	admin := userModel.UserModel{
		UserUsername: &req.Username,
		UserPassword: &hashedStr,
		UserRole:     constants.RoleAdmin,
		UserName:     req.Name,
	}
	if err := ctrl.DB.Create(&admin).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username already exists.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create admin account")
	}

	ctrl.State.MarkSetupComplete()
	log.Printf("[SETUP] Akun admin '%s' dibuat, aplikasi masuk mode normal", req.Username)

	auditService.LogAction(ctrl.DB,
		auditService.Actor{Name: req.Username, Role: constants.RoleAdmin},
		"CREATE_ADMIN", map[string]interface{}{"name": req.Name})

	return helper.JsonCreated(c, "Admin account created successfully.", fiber.Map{
		"user_id": admin.UserID,
	})
}

// POST /api/request-password-reset — respons selalu sama supaya username
// tidak bisa di-enumerate.
func (ctrl *AuthController) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.RequestPasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("user_username = ?", req.Username).First(&user).Error; err == nil {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err == nil {
			token := hex.EncodeToString(buf)
			expiry := time.Now().Add(resetTokenTTL)
			ctrl.DB.Model(&userModel.UserModel{}).
				Where("user_id = ?", user.UserID).
				Updates(map[string]interface{}{
					"user_reset_token":        token,
					"user_reset_token_expiry": expiry,
				})
			// Belum ada integrasi email — link reset ditulis ke log server.
			log.Printf("[RESET] Link reset untuk %s (berlaku 1 jam): /reset-password.html?token=%s", req.Username, token)
			auditService.LogAction(ctrl.DB,
				auditService.Actor{ID: user.UserID, Name: user.UserName, Role: user.UserRole},
				"REQUEST_PASSWORD_RESET", nil)
		}
	}

	return helper.JsonOK(c, "If an account with that username exists, a reset link has been generated.", nil)
}

// POST /api/reset-password
func (ctrl *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var user userModel.UserModel
	err := ctrl.DB.Where("user_reset_token = ? AND user_reset_token_expiry > ?", req.Token, time.Now()).
		First(&user).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid or expired password reset token.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	if err := ctrl.DB.Model(&userModel.UserModel{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"user_password":           string(hashed),
			"user_reset_token":        nil,
			"user_reset_token_expiry": nil,
		}).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to reset password")
	}

	auditService.LogAction(ctrl.DB,
		auditService.Actor{ID: user.UserID, Name: user.UserName, Role: user.UserRole},
		"COMPLETE_PASSWORD_RESET", nil)

	return helper.JsonOK(c, "Password has been reset successfully.", nil)
}

// POST /api/user/change-password (login dulu)
func (ctrl *AuthController) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found.")
	}

	if user.UserPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.UserPassword), []byte(req.CurrentPassword)) != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Current password is incorrect.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	if err := ctrl.DB.Model(&userModel.UserModel{}).
		Where("user_id = ?", user.UserID).
		Update("user_password", string(hashed)).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to change password")
	}

	auditService.LogAction(ctrl.DB, ctrl.actor(c), "CHANGE_PASSWORD", nil)
	return helper.JsonOK(c, "Password changed successfully.", nil)
}

// POST /api/student-setup/validate — cek kode siswa yang belum punya akun.
func (ctrl *AuthController) StudentSetupValidate(c *fiber.Ctx) error {
	var req dto.StudentSetupValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var row struct {
		UserName     string
		UserUsername *string
	}
	err := ctrl.DB.Model(&userModel.UserModel{}).
		Select("users.user_name, users.user_username").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = users.user_id").
		Where("sd.student_detail_student_code = ? AND users.user_role = ?", req.StudentCode, constants.RoleStudent).
		Take(&row).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Student Code not found.")
	}
	if row.UserUsername != nil {
		return helper.JsonError(c, fiber.StatusConflict, "This account has already been set up. Please log in or use \"Forgot Password\".")
	}

	return helper.JsonOK(c, "Student code valid", fiber.Map{"name": row.UserName})
}

// POST /api/student-setup/complete — klaim akun: set username + password.
func (ctrl *AuthController) StudentSetupComplete(c *fiber.Ctx) error {
	var req dto.StudentSetupCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var row struct {
		UserID       uuid.UUID
		UserUsername *string
	}
	err := ctrl.DB.Model(&userModel.UserModel{}).
		Select("users.user_id, users.user_username").
		Joins("JOIN student_details sd ON sd.student_detail_user_id = users.user_id").
		Where("sd.student_detail_student_code = ? AND users.user_role = ?", req.StudentCode, constants.RoleStudent).
		Take(&row).Error
	if err != nil || row.UserUsername != nil {
		return helper.JsonError(c, fiber.StatusForbidden, "This account is not eligible for setup.")
	}

	var taken int64
	if err := ctrl.DB.Model(&userModel.UserModel{}).
		Where("user_username = ?", req.Username).
		Count(&taken).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check username")
	}
	if taken > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "This username is already taken. Please choose another.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	if err := ctrl.DB.Model(&userModel.UserModel{}).
		Where("user_id = ?", row.UserID).
		Updates(map[string]interface{}{
			"user_username": req.Username,
			"user_password": string(hashed),
		}).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "This username is already taken. Please choose another.")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to complete setup")
	}

	return helper.JsonOK(c, "Account setup complete! You can now log in.", nil)
}
