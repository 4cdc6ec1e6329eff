// file: internals/features/school/marks/model/marks_history_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// MarksHistoryModel: koreksi append-only atas nilai yang sudah published.
// Baris published tidak pernah di-overwrite; pembaca yang butuh nilai
// terkoreksi membaca history terbaru.
type MarksHistoryModel struct {
	MarksHistoryID       uuid.UUID `json:"marks_history_id" gorm:"type:uuid;primaryKey;column:marks_history_id;default:gen_random_uuid()"`
	MarksHistorySchoolID uuid.UUID `json:"marks_history_school_id" gorm:"type:uuid;not null;column:marks_history_school_id;index"`

	MarksHistoryStudentMarkID uuid.UUID `json:"marks_history_student_mark_id" gorm:"type:uuid;not null;column:marks_history_student_mark_id;index"`

	MarksHistoryPrevValue float64 `json:"marks_history_prev_value" gorm:"type:numeric(6,2);not null;column:marks_history_prev_value"`
	MarksHistoryNewValue  float64 `json:"marks_history_new_value" gorm:"type:numeric(6,2);not null;column:marks_history_new_value"`
	MarksHistoryReason    string  `json:"marks_history_reason" gorm:"type:text;not null;column:marks_history_reason"`

	MarksHistoryChangedBy uuid.UUID `json:"marks_history_changed_by" gorm:"type:uuid;not null;column:marks_history_changed_by"`
	MarksHistoryCreatedAt time.Time `json:"marks_history_created_at" gorm:"column:marks_history_created_at;autoCreateTime"`
}

func (MarksHistoryModel) TableName() string { return "marks_histories" }
