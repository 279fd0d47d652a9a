// internals/features/audit/controller/audit_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/audit/model"

	helper "presensiku_backend/internals/helpers"
)

type AuditController struct {
	DB *gorm.DB
}

func NewAuditController(db *gorm.DB) *AuditController {
	return &AuditController{DB: db}
}

// GET /api/audit-logs?page= — admin only, 20 per halaman.
func (ctrl *AuditController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, helper.AuditOpts)

	var total int64
	if err := ctrl.DB.Model(&model.AuditLogModel{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count audit logs")
	}

	var logs []model.AuditLogModel
	if err := ctrl.DB.Order("audit_log_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&logs).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch audit logs")
	}

	return helper.JsonList(c, "ok", logs, helper.BuildMeta(total, p))
}
