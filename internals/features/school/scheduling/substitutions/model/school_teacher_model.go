// file: internals/features/school/scheduling/substitutions/model/school_teacher_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SchoolTeacherModel: direktori guru per sekolah — pool kandidat substitusi.
// Subject IDs disimpan sebagai array teks; kecocokan subject hanya memengaruhi
// RANKING kandidat, tidak pernah menyaring.
type SchoolTeacherModel struct {
	SchoolTeacherID       uuid.UUID `json:"school_teacher_id" gorm:"type:uuid;primaryKey;column:school_teacher_id;default:gen_random_uuid()"`
	SchoolTeacherSchoolID uuid.UUID `json:"school_teacher_school_id" gorm:"type:uuid;not null;column:school_teacher_school_id;index"`

	SchoolTeacherUserID uuid.UUID `json:"school_teacher_user_id" gorm:"type:uuid;not null;column:school_teacher_user_id;index"`
	SchoolTeacherName   string    `json:"school_teacher_name" gorm:"type:varchar(100);not null;column:school_teacher_name"`

	SchoolTeacherSubjectIDs pq.StringArray `json:"school_teacher_subject_ids" gorm:"type:text[];column:school_teacher_subject_ids"`

	SchoolTeacherIsActive bool `json:"school_teacher_is_active" gorm:"not null;default:true;column:school_teacher_is_active"`

	SchoolTeacherCreatedAt time.Time `json:"school_teacher_created_at" gorm:"column:school_teacher_created_at;autoCreateTime"`
	SchoolTeacherUpdatedAt time.Time `json:"school_teacher_updated_at" gorm:"column:school_teacher_updated_at;autoUpdateTime"`
}

func (SchoolTeacherModel) TableName() string { return "school_teachers" }

// TeachesSubject: cek apakah subject ada di daftar mapel guru.
func (t SchoolTeacherModel) TeachesSubject(subjectID uuid.UUID) bool {
	want := subjectID.String()
	for _, s := range t.SchoolTeacherSubjectIDs {
		if s == want {
			return true
		}
	}
	return false
}
