// internals/features/audit/service/log_action.go
package service

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/audit/model"
)

// Actor: snapshot pelaku yang ditulis ke audit log.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// LogAction mencatat aksi ke audit_logs. Kegagalan audit TIDAK boleh
// menggagalkan operasi utamanya: error cuma di-log lalu ditelan.
func LogAction(db *gorm.DB, actor Actor, action string, details map[string]interface{}) {
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("[AUDIT] gagal marshal details untuk %s: %v", action, err)
		} else {
			raw = datatypes.JSON(b)
		}
	}

	entry := model.AuditLogModel{
		AuditLogActorName: actor.Name,
		AuditLogActorRole: actor.Role,
		AuditLogAction:    action,
		AuditLogDetails:   raw,
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		entry.AuditLogActorID = &id
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] gagal tulis audit log %s: %v", action, err)
	}
}
