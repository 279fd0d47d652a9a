// internals/seeds/seed.go
package seeds

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	userModel "presensiku_backend/internals/features/users/users/model"

	"presensiku_backend/internals/configs"
	"presensiku_backend/internals/constants"
)

// SeedDefaultStaff membuat akun registrar & teacher demo kalau diminta
// lewat env SEED_DEMO_STAFF=true dan tabel users masih kosong dari
// staff. Untuk lingkungan dev; produksi memakai setup mode + approval.
func SeedDefaultStaff(db *gorm.DB) {
	if configs.GetEnv("SEED_DEMO_STAFF") != "true" {
		return
	}

	var count int64
	if err := db.Model(&userModel.UserModel{}).
		Where("user_role IN ?", []string{constants.RoleRegistrar, constants.RoleTeacher}).
		Count(&count).Error; err != nil || count > 0 {
		return
	}

	seed := []struct {
		Name     string
		Username string
		Role     string
	}{
		{"Demo Registrar", "registrar", constants.RoleRegistrar},
		{"Demo Teacher", "teacher", constants.RoleTeacher},
	}

	password := configs.GetEnv("SEED_DEMO_PASSWORD", "password123")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[SEED] gagal hash password demo: %v", err)
		return
	}
	hashedStr := string(hashed)

	for _, s := range seed {
		username := s.Username
		u := userModel.UserModel{
			UserUsername: &username,
			UserPassword: &hashedStr,
			UserRole:     s.Role,
			UserName:     s.Name,
		}
		if err := db.Create(&u).Error; err != nil {
			log.Printf("[SEED] gagal buat %s: %v", s.Username, err)
			continue
		}
		log.Printf("[SEED] akun demo %s (%s) dibuat", s.Username, s.Role)
	}
}
