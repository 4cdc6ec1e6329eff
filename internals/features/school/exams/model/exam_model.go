// file: internals/features/school/exams/model/exam_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ExamStatusDraft     = "draft"
	ExamStatusScheduled = "scheduled"
	ExamStatusOngoing   = "ongoing"
	ExamStatusCompleted = "completed"
)

// ExamModel: satu penyelenggaraan ujian milik sekolah.
// Publish hanya sah kalau exam punya ≥1 paper dan papers bebas bentrok.
// Setelah published, exam & papers read-mostly; perubahan butuh unpublish
// eksplisit dengan alasan (asimetri draft/publish, sama seperti timetable).
type ExamModel struct {
	ExamID       uuid.UUID `json:"exam_id" gorm:"type:uuid;primaryKey;column:exam_id;default:gen_random_uuid()"`
	ExamSchoolID uuid.UUID `json:"exam_school_id" gorm:"type:uuid;not null;column:exam_school_id;index"`

	ExamName           string    `json:"exam_name" gorm:"type:text;not null;column:exam_name"`
	ExamAcademicYearID uuid.UUID `json:"exam_academic_year_id" gorm:"type:uuid;not null;column:exam_academic_year_id"`

	ExamStatus      string `json:"exam_status" gorm:"type:varchar(20);not null;default:'draft';column:exam_status;index"`
	ExamIsPublished bool   `json:"exam_is_published" gorm:"not null;default:false;column:exam_is_published"`

	ExamPublishedAt *time.Time `json:"exam_published_at,omitempty" gorm:"column:exam_published_at"`
	ExamPublishedBy *uuid.UUID `json:"exam_published_by,omitempty" gorm:"type:uuid;column:exam_published_by"`

	ExamUnpublishedAt     *time.Time `json:"exam_unpublished_at,omitempty" gorm:"column:exam_unpublished_at"`
	ExamUnpublishedReason *string    `json:"exam_unpublished_reason,omitempty" gorm:"type:text;column:exam_unpublished_reason"`

	ExamCreatedAt time.Time      `json:"exam_created_at" gorm:"column:exam_created_at;autoCreateTime"`
	ExamUpdatedAt time.Time      `json:"exam_updated_at" gorm:"column:exam_updated_at;autoUpdateTime"`
	ExamDeletedAt gorm.DeletedAt `json:"exam_deleted_at,omitempty" gorm:"column:exam_deleted_at;index"`
}

func (ExamModel) TableName() string { return "exams" }
