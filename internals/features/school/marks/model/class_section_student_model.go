// file: internals/features/school/marks/model/class_section_student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassSectionStudentModel: enrolment siswa per class/section.
// Sumber otoritatif untuk cek cakupan entry nilai; modul ini hanya membaca.
type ClassSectionStudentModel struct {
	ClassSectionStudentID       uuid.UUID `json:"class_section_student_id" gorm:"type:uuid;primaryKey;column:class_section_student_id;default:gen_random_uuid()"`
	ClassSectionStudentSchoolID uuid.UUID `json:"class_section_student_school_id" gorm:"type:uuid;not null;column:class_section_student_school_id;index"`

	ClassSectionStudentClassID   uuid.UUID  `json:"class_section_student_class_id" gorm:"type:uuid;not null;column:class_section_student_class_id;index"`
	ClassSectionStudentSectionID *uuid.UUID `json:"class_section_student_section_id,omitempty" gorm:"type:uuid;column:class_section_student_section_id"`
	ClassSectionStudentStudentID uuid.UUID  `json:"class_section_student_student_id" gorm:"type:uuid;not null;column:class_section_student_student_id;index"`

	ClassSectionStudentIsActive bool `json:"class_section_student_is_active" gorm:"not null;default:true;column:class_section_student_is_active"`

	ClassSectionStudentCreatedAt time.Time `json:"class_section_student_created_at" gorm:"column:class_section_student_created_at;autoCreateTime"`
}

func (ClassSectionStudentModel) TableName() string { return "class_section_students" }
