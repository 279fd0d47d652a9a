// internals/features/school/students/service/codegen.go
package service

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presensiku_backend/internals/features/school/students/model"
)

// AllocateStudentCode mengeluarkan kode siswa format YYYY-NNN (urut per
// tahun). Counter disimpan di app_meta; kalau kandidat sudah terpakai
// (mis. kode impor manual) urutannya dilewati sampai ketemu yang kosong.
// Seluruhnya satu transaksi, baris counter dikunci supaya dua request
// paralel tidak mendapat kode sama.
func AllocateStudentCode(db *gorm.DB, year int) (string, error) {
	key := fmt.Sprintf("last_student_seq_%d", year)
	var code string

	err := db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.AppMetaModel{})
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var meta model.AppMetaModel
		seq := 0
		if err := q.Where("app_meta_key = ?", key).First(&meta).Error; err == nil {
			seq = meta.AppMetaValue
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		for {
			seq++
			candidate := fmt.Sprintf("%d-%03d", year, seq)
			var count int64
			if err := tx.Model(&model.StudentDetailModel{}).
				Where("student_detail_student_code = ?", candidate).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				code = candidate
				break
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "app_meta_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"app_meta_value": seq}),
		}).Create(&model.AppMetaModel{AppMetaKey: key, AppMetaValue: seq}).Error
	})
	if err != nil {
		return "", err
	}
	return code, nil
}
