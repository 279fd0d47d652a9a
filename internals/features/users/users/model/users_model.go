// internals/features/users/users/model/users_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	// PK
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`

	// Username & password nullable: siswa dibuat staff belum punya akun
	// sampai self-service setup selesai.
	UserUsername *string `gorm:"column:user_username;type:varchar(64);uniqueIndex:uq_users_username" json:"user_username,omitempty"`
	UserPassword *string `gorm:"column:user_password;type:varchar(100)" json:"-"`

	UserRole string `gorm:"column:user_role;type:varchar(16);not null" json:"user_role"`
	UserName string `gorm:"column:user_name;type:varchar(100);not null" json:"user_name"`

	// Reset password (token acak + kedaluwarsa)
	UserResetToken       *string    `gorm:"column:user_reset_token;type:varchar(64);index" json:"-"`
	UserResetTokenExpiry *time.Time `gorm:"column:user_reset_token_expiry" json:"-"`

	UserCreatedAt time.Time `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	return nil
}
