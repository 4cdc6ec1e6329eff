// file: internals/features/school/scheduling/substitutions/model/substitution_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubstitutionStatusPending   = "pending"
	SubstitutionStatusAssigned  = "assigned"
	SubstitutionStatusCompleted = "completed"
	SubstitutionStatusCancelled = "cancelled"
)

// SubstitutionModel: satu slot timetable yang butuh guru pengganti pada
// tanggal tertentu. Assign dijaga guarded update pada status pending —
// dua admin yang assign bersamaan, persis satu yang menang.
type SubstitutionModel struct {
	SubstitutionID       uuid.UUID `json:"substitution_id" gorm:"type:uuid;primaryKey;column:substitution_id;default:gen_random_uuid()"`
	SubstitutionSchoolID uuid.UUID `json:"substitution_school_id" gorm:"type:uuid;not null;column:substitution_school_id;index"`

	SubstitutionTimetableEntryID uuid.UUID `json:"substitution_timetable_entry_id" gorm:"type:uuid;not null;column:substitution_timetable_entry_id;index"`
	SubstitutionDate             time.Time `json:"substitution_date" gorm:"type:date;not null;column:substitution_date;index"`

	SubstitutionOriginalTeacherID   uuid.UUID  `json:"substitution_original_teacher_id" gorm:"type:uuid;not null;column:substitution_original_teacher_id"`
	SubstitutionSubstituteTeacherID *uuid.UUID `json:"substitution_substitute_teacher_id,omitempty" gorm:"type:uuid;column:substitution_substitute_teacher_id"`

	SubstitutionStatus string `json:"substitution_status" gorm:"type:varchar(20);not null;default:'pending';column:substitution_status;index"`
	SubstitutionReason string `json:"substitution_reason" gorm:"type:text;not null;column:substitution_reason"`

	SubstitutionCreatedBy  uuid.UUID  `json:"substitution_created_by" gorm:"type:uuid;not null;column:substitution_created_by"`
	SubstitutionAssignedAt *time.Time `json:"substitution_assigned_at,omitempty" gorm:"column:substitution_assigned_at"`

	SubstitutionCreatedAt time.Time `json:"substitution_created_at" gorm:"column:substitution_created_at;autoCreateTime"`
	SubstitutionUpdatedAt time.Time `json:"substitution_updated_at" gorm:"column:substitution_updated_at;autoUpdateTime"`
}

func (SubstitutionModel) TableName() string { return "substitutions" }
