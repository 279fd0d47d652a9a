// internals/features/school/attendance/service/codegen.go
package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"presensiku_backend/internals/features/school/attendance/model"
)

var ErrCodeExhausted = errors.New("gagal mendapatkan kode sesi unik")

// GenerateSessionCode: 6 karakter hex uppercase acak, dicek unik terhadap
// sesi yang sudah ada. Ruang 16^6 jauh lebih besar dari jumlah sesi, jadi
// retry hampir tidak pernah lebih dari sekali.
func GenerateSessionCode(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		code := strings.ToUpper(hex.EncodeToString(buf))

		var count int64
		if err := db.Model(&model.AttendanceSessionModel{}).
			Where("attendance_session_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}
