// internals/features/school/students/model/app_meta_model.go
package model

// AppMetaModel: key-value metadata, dipakai counter sequence kode siswa
// per tahun (key "last_student_seq_<year>").
type AppMetaModel struct {
	AppMetaKey   string `gorm:"column:app_meta_key;type:varchar(64);primaryKey" json:"app_meta_key"`
	AppMetaValue int    `gorm:"column:app_meta_value;not null;default:0" json:"app_meta_value"`
}

func (AppMetaModel) TableName() string {
	return "app_meta"
}
