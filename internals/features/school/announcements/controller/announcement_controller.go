// internals/features/school/announcements/controller/announcement_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	auditService "presensiku_backend/internals/features/audit/service"
	"presensiku_backend/internals/features/school/announcements/model"

	helper "presensiku_backend/internals/helpers"
)

type CreateAnnouncementRequest struct {
	Title   string `json:"title" validate:"required,max=150"`
	Content string `json:"content" validate:"required"`
}

type AnnouncementController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{DB: db, Validate: validator.New()}
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

// GET /api/announcements — terbaru dulu.
func (ctrl *AnnouncementController) List(c *fiber.Ctx) error {
	var announcements []model.AnnouncementModel
	if err := ctrl.DB.Order("announcement_created_at DESC").
		Find(&announcements).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch announcements")
	}
	return helper.JsonOK(c, "ok", announcements)
}

// POST /api/announcements
func (ctrl *AnnouncementController) Create(c *fiber.Ctx) error {
	var req CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	actor := actorFromLocals(c)
	ann := model.AnnouncementModel{
		AnnouncementTitle:       req.Title,
		AnnouncementContent:     req.Content,
		AnnouncementCreatedName: actor.Name,
	}
	if actor.ID != uuid.Nil {
		createdBy := actor.ID
		ann.AnnouncementCreatedBy = &createdBy
	}
	if err := ctrl.DB.Create(&ann).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to post announcement")
	}

	auditService.LogAction(ctrl.DB, actor, "CREATE_ANNOUNCEMENT",
		map[string]interface{}{"id": ann.AnnouncementID, "title": req.Title})

	return helper.JsonCreated(c, "Announcement posted.", ann)
}

// DELETE /api/announcements/:id
func (ctrl *AnnouncementController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid announcement ID")
	}

	if err := ctrl.DB.Delete(&model.AnnouncementModel{}, "announcement_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete announcement")
	}

	auditService.LogAction(ctrl.DB, actorFromLocals(c), "DELETE_ANNOUNCEMENT",
		map[string]interface{}{"id": id})

	return helper.JsonDeleted(c, "Announcement deleted.", nil)
}
